package service

import (
	"testing"
)

func newHubClient(hub *AdvisorHub, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Send:   make(chan []byte, 4),
		UserID: userID,
	}
}

// 注册走分片写锁，和 Run 的 register 分支同一套动作
func registerClient(hub *AdvisorHub, c *Client) {
	s := hub.getShard(c.UserID)
	s.mu.Lock()
	s.clients[c.UserID] = c
	s.mu.Unlock()
}

// 注销同样模拟 Run 的 unregister 分支：移除并关闭发送通道
func unregisterClient(hub *AdvisorHub, c *Client) {
	s := hub.getShard(c.UserID)
	s.mu.Lock()
	if cur, ok := s.clients[c.UserID]; ok && cur == c {
		delete(s.clients, c.UserID)
		close(c.Send)
	}
	s.mu.Unlock()
}

func TestPushToRegisteredClient(t *testing.T) {
	hub := NewAdvisorHub(nil, nil)
	c := newHubClient(hub, 7)
	registerClient(hub, c)

	hub.pushToClient(c, WSMessage{Type: "DELTA", Data: "你好"})

	select {
	case payload := <-c.Send:
		if len(payload) == 0 {
			t.Error("empty payload delivered")
		}
	default:
		t.Fatal("expected a message in the send buffer")
	}
}

func TestPushAfterUnregisterDoesNotPanic(t *testing.T) {
	hub := NewAdvisorHub(nil, nil)
	c := newHubClient(hub, 7)
	registerClient(hub, c)
	unregisterClient(hub, c)

	// 连接断开后 Send 已关闭，流式回复的后续推送必须被丢弃而不是 panic
	hub.pushToClient(c, WSMessage{Type: "DELTA", Data: "迟到的增量"})
	hub.pushToClient(c, WSMessage{Type: "DONE", Data: "迟到的收尾"})
}

func TestPushSkipsReplacedConnection(t *testing.T) {
	hub := NewAdvisorHub(nil, nil)
	old := newHubClient(hub, 7)
	registerClient(hub, old)

	// 同一用户重连：旧连接被顶掉并关闭
	replacement := newHubClient(hub, 7)
	s := hub.getShard(7)
	s.mu.Lock()
	close(old.Send)
	s.clients[7] = replacement
	s.mu.Unlock()

	// 旧指针的推送不能落到新连接，也不能 panic
	hub.pushToClient(old, WSMessage{Type: "DELTA", Data: "x"})
	select {
	case <-replacement.Send:
		t.Fatal("message for the stale connection leaked to the replacement")
	default:
	}

	hub.pushToClient(replacement, WSMessage{Type: "DELTA", Data: "y"})
	select {
	case <-replacement.Send:
	default:
		t.Fatal("expected delivery to the current connection")
	}
}

func TestIsUserOnlineLocalShard(t *testing.T) {
	hub := NewAdvisorHub(nil, nil)
	if hub.IsUserOnline(7) {
		t.Error("user online before register")
	}
	c := newHubClient(hub, 7)
	registerClient(hub, c)
	if !hub.IsUserOnline(7) {
		t.Error("user offline after register")
	}
}
