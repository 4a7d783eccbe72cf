package controller

import (
	"bytes"
	"context"
	"cyberguard_backend/internal/config"
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type storedObject struct {
	Name        string
	ContentType string
	Size        int
}

// fakeStorage 记录归档调用，替代真实对象存储
type fakeStorage struct {
	objects []storedObject
}

func (f *fakeStorage) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	data, _ := io.ReadAll(reader)
	f.objects = append(f.objects, storedObject{Name: filename, ContentType: contentType, Size: len(data)})
	return "/" + filename, nil
}

func (f *fakeStorage) PutObject(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	f.objects = append(f.objects, storedObject{Name: filename, ContentType: contentType, Size: len(data)})
	return "/" + filename, nil
}

func (f *fakeStorage) Delete(ctx context.Context, filename string) error { return nil }

func (f *fakeStorage) GetURL(filename string) string { return "/" + filename }

func newAIRequestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest("POST", "/api/ai/speech", strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	ctx.Set("user", &util.Claims{UserID: 7, Role: model.RoleMember})
	return ctx, w
}

func TestSpeechArchivesAudio(t *testing.T) {
	audio := []byte("FAKE-AUDIO-BYTES")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("upstream path = %s, want /audio/speech", r.URL.Path)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer upstream.Close()

	store := &fakeStorage{}
	c := &AIController{
		AI:      service.NewAIService(config.AIConfig{BaseURL: upstream.URL, TTSModel: "tts-1"}),
		Storage: store,
	}

	ctx, w := newAIRequestContext(t, `{"input":"你好"}`)
	c.Speech(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), audio) {
		t.Error("response body does not match upstream audio")
	}

	// 音频同时归档一份
	if len(store.objects) != 1 {
		t.Fatalf("archived objects = %d, want 1", len(store.objects))
	}
	obj := store.objects[0]
	if !strings.HasPrefix(obj.Name, "speech/7-") || !strings.HasSuffix(obj.Name, ".mp3") {
		t.Errorf("object name = %s, want speech/7-*.mp3", obj.Name)
	}
	if obj.ContentType != "audio/mpeg" || obj.Size != len(audio) {
		t.Errorf("archived %s/%d bytes, want audio/mpeg/%d", obj.ContentType, obj.Size, len(audio))
	}
}

func TestSpeechWithoutStorageStillServes(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("AUDIO"))
	}))
	defer upstream.Close()

	c := &AIController{AI: service.NewAIService(config.AIConfig{BaseURL: upstream.URL})}

	ctx, w := newAIRequestContext(t, `{"input":"你好"}`)
	c.Speech(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRealtimeSessionWithoutRedis(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/realtime/sessions" {
			t.Errorf("upstream path = %s, want /realtime/sessions", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"sess_1","model":"rt-1","client_secret":{"value":"ek_abc","expires_at":4102444800}}`))
	}))
	defer upstream.Close()

	c := &AIController{AI: service.NewAIService(config.AIConfig{BaseURL: upstream.URL, RealtimeModel: "rt-1"})}

	ctx, w := newAIRequestContext(t, `{"instructions":"扮演合规顾问"}`)
	c.RealtimeSession(ctx)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ek_abc") {
		t.Error("response does not contain the client secret")
	}
}
