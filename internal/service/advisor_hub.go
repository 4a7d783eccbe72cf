package service

import (
	"context"
	"cyberguard_backend/pkg/logger"
	"cyberguard_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	shardCount     = 32
	onlineTTL      = 2 * time.Minute // 在线状态过期时间
	historyWindow  = 20              // 带给模型的历史条数
)

var (
	// 内存复用 (sync.Pool)
	messagePool = sync.Pool{
		New: func() interface{} {
			return &WSMessage{}
		},
	}
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	Hub     *AdvisorHub
	Conn    *websocket.Conn
	Send    chan []byte
	UserID  uint
	Limiter *rate.Limiter // 限流器
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.Uint("userId", c.UserID))
			}
			break
		}

		// 限流校验 (每秒最多 2 条提问，允许突发 5 条)
		if !c.Limiter.Allow() {
			c.Hub.pushToClient(c, WSMessage{Type: "ERROR", Data: "请求过于频繁，请稍后再试"})
			continue
		}

		// 对象池解析消息
		wsMsg := messagePool.Get().(*WSMessage)
		if err := json.Unmarshal(message, wsMsg); err != nil {
			messagePool.Put(wsMsg)
			continue
		}

		monitoring.AdvisorMessageCounter.WithLabelValues(wsMsg.Type, "in").Inc()

		if wsMsg.Type == "CHAT" {
			data, ok := wsMsg.Data.(map[string]interface{})
			if ok {
				if prompt, _ := data["content"].(string); prompt != "" {
					go c.Hub.handleChat(c, prompt)
				}
			}
		}
		messagePool.Put(wsMsg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type shard struct {
	clients map[uint]*Client
	mu      sync.RWMutex
}

// AdvisorHub 管理顾问 WebSocket 连接。每个用户和 AI 顾问一对一会话，
// 连接按用户 ID 分片，在线状态写 Redis 供多实例部署查询。
type AdvisorHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	Redis      *redis.Client
	Advisor    *AdvisorService
	ctx        context.Context
}

func NewAdvisorHub(rdb *redis.Client, advisor *AdvisorService) *AdvisorHub {
	h := &AdvisorHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		Redis:      rdb,
		Advisor:    advisor,
		ctx:        context.Background(),
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{
			clients: make(map[uint]*Client),
		}
	}
	return h
}

func (h *AdvisorHub) getShard(userID uint) *shard {
	return h.shards[userID%shardCount]
}

func (h *AdvisorHub) Run() {
	// 状态续期定时器 (Heartbeat)
	heartbeatTicker := time.NewTicker(1 * time.Minute)
	defer heartbeatTicker.Stop()

	for {
		select {
		case client := <-h.register:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if old, ok := s.clients[client.UserID]; ok {
				// 同一用户重连时顶掉旧连接
				close(old.Send)
			}
			s.clients[client.UserID] = client
			s.mu.Unlock()
			h.setOnline(client.UserID, true)

		case client := <-h.unregister:
			s := h.getShard(client.UserID)
			s.mu.Lock()
			if cur, ok := s.clients[client.UserID]; ok && cur == client {
				delete(s.clients, client.UserID)
				close(client.Send)
			}
			s.mu.Unlock()
			h.setOnline(client.UserID, false)

		case <-heartbeatTicker.C:
			h.refreshOnlineStatus()
		}
	}
}

func (h *AdvisorHub) setOnline(userID uint, online bool) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf("advisor:online:%d", userID)
	if online {
		h.Redis.Set(h.ctx, key, "true", onlineTTL)
	} else {
		h.Redis.Del(h.ctx, key)
	}
}

// refreshOnlineStatus 刷新当前实例所有在线用户的过期时间
func (h *AdvisorHub) refreshOnlineStatus() {
	if h.Redis == nil {
		return
	}
	pipe := h.Redis.Pipeline()
	count := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for userID := range s.clients {
			pipe.Expire(h.ctx, fmt.Sprintf("advisor:online:%d", userID), onlineTTL)
			count++
		}
		s.mu.RUnlock()
	}
	if count > 0 {
		pipe.Exec(h.ctx)
		logger.Log.Debug("Refreshed advisor online status", zap.Int("count", count))
	}
}

// handleChat 走 AdvisorService 的公共对话流程，把增量推回连接
func (h *AdvisorHub) handleChat(c *Client, prompt string) {
	ctx, cancel := context.WithTimeout(h.ctx, 120*time.Second)
	defer cancel()

	out, errChan := h.Advisor.AskStream(ctx, c.UserID, prompt)

	var full string
	for delta := range out {
		full += delta
		h.pushToClient(c, WSMessage{Type: "DELTA", Data: delta})
	}
	if err := <-errChan; err != nil {
		logger.Log.Warn("advisor stream failed", zap.Uint("userId", c.UserID), zap.Error(err))
		h.pushToClient(c, WSMessage{Type: "ERROR", Data: "顾问暂时不可用，请稍后再试"})
		return
	}

	h.pushToClient(c, WSMessage{Type: "DONE", Data: full})
}

// pushToClient 推送前在分片读锁下确认该连接仍然注册。
// 注销、重连顶替和 Stop 都是持写锁 close(Send)，与这里互斥，
// 连接在流式回复中途断开时不会向已关闭的通道发送。
func (h *AdvisorHub) pushToClient(c *Client, msg WSMessage) {
	payload, _ := json.Marshal(msg)

	s := h.getShard(c.UserID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cur, ok := s.clients[c.UserID]; !ok || cur != c {
		return
	}

	select {
	case c.Send <- payload:
		monitoring.AdvisorMessageCounter.WithLabelValues(msg.Type, "out").Inc()
	default:
		// 发送缓冲满说明客户端跟不上，丢弃增量
	}
}

func (h *AdvisorHub) IsUserOnline(userID uint) bool {
	// 查本地分片
	s := h.getShard(userID)
	s.mu.RLock()
	_, ok := s.clients[userID]
	s.mu.RUnlock()
	if ok {
		return true
	}

	// 查 Redis (多实例部署)
	if h.Redis == nil {
		return false
	}
	val, err := h.Redis.Get(h.ctx, fmt.Sprintf("advisor:online:%d", userID)).Result()
	return err == nil && val == "true"
}

// Stop 关闭所有连接并清理在线状态
func (h *AdvisorHub) Stop() {
	logger.Log.Info("AdvisorHub stopping: clearing online status and closing connections...")

	var allUserIDs []uint
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for userID, client := range s.clients {
			allUserIDs = append(allUserIDs, userID)
			close(client.Send)
			delete(s.clients, userID)
		}
		s.mu.Unlock()
	}

	if len(allUserIDs) > 0 && h.Redis != nil {
		pipe := h.Redis.Pipeline()
		for _, userID := range allUserIDs {
			pipe.Del(h.ctx, fmt.Sprintf("advisor:online:%d", userID))
		}
		pipe.Exec(h.ctx)
	}

	logger.Log.Info("AdvisorHub stopped", zap.Int("closedConnections", len(allUserIDs)))
}

func ServeWs(hub *AdvisorHub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.Uint("userId", userID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		UserID:  userID,
		Limiter: rate.NewLimiter(rate.Limit(2), 5),
	}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
