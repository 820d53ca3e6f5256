package service

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"scms_backend/internal/model"
	"scms_backend/pkg/logger"
	"scms_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	shardCount     = 16
	sendBuffer     = 64
	publishTimeout = 2 * time.Second
)

const (
	MessageComplaintEvent = "COMPLAINT_EVENT"
	MessageReminderAlert  = "REMINDER_ALERT"
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

// PubSubMessage 多实例之间通过 Redis 转发，Department 为空表示投诉尚未分配
type PubSubMessage struct {
	Department model.DepartmentKey `json:"department,omitempty"`
	Payload    json.RawMessage     `json:"payload"`
}

type Client struct {
	Hub     *NotificationHub
	Conn    *websocket.Conn
	Send    chan []byte
	Actor   model.Actor
	Limiter *rate.Limiter
}

// accepts 部门负责人只接收已分配给本部门的投诉
func (c *Client) accepts(department model.DepartmentKey) bool {
	if c.Actor.Role != model.DepartmentHead {
		return true
	}
	return department != "" && c.Actor.Department == department
}

// readPump 客户端只会发送心跳，读到的内容直接丢弃
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("WebSocket unexpected close", zap.Error(err), zap.String("actorId", c.Actor.ID))
			}
			return
		}
		// 限流 (每秒最多 5 条，允许突发 10 条)
		if !c.Limiter.Allow() {
			logger.Log.Debug("WebSocket client rate limited", zap.String("actorId", c.Actor.ID))
		}
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
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

// NotificationHub 向管理端推送投诉变更和提醒。配置了 Redis 时投诉事件经频道广播到所有实例
type NotificationHub struct {
	shards     [shardCount]*shard
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	Redis      *redis.Client
	Channel    string
}

func NewNotificationHub(rdb *redis.Client, channel string) *NotificationHub {
	h := &NotificationHub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		Redis:      rdb,
		Channel:    channel,
	}
	for i := 0; i < shardCount; i++ {
		h.shards[i] = &shard{clients: make(map[*Client]struct{})}
	}
	return h
}

func (h *NotificationHub) getShard(actorID string) *shard {
	f := fnv.New32a()
	f.Write([]byte(actorID))
	return h.shards[f.Sum32()%shardCount]
}

// Run 阻塞直到 ctx 结束，结束时关闭所有连接
func (h *NotificationHub) Run(ctx context.Context) {
	if h.Redis != nil && h.Channel != "" {
		pubsub := h.Redis.Subscribe(ctx, h.Channel)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				var psMsg PubSubMessage
				if err := json.Unmarshal([]byte(msg.Payload), &psMsg); err != nil {
					logger.Log.Error("PubSub unmarshal error", zap.Error(err))
					continue
				}
				h.pushLocal(psMsg.Department, psMsg.Payload)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			s := h.getShard(client.Actor.ID)
			s.mu.Lock()
			s.clients[client] = struct{}{}
			s.mu.Unlock()
			monitoring.WSConnections.Inc()
		case client := <-h.unregister:
			s := h.getShard(client.Actor.ID)
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.Send)
				monitoring.WSConnections.Dec()
			}
			s.mu.Unlock()
		}
	}
}

func (h *NotificationHub) closeAll() {
	closed := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.Lock()
		for client := range s.clients {
			close(client.Send)
			delete(s.clients, client)
			closed++
		}
		s.mu.Unlock()
	}
	monitoring.WSConnections.Set(0)
	logger.Log.Info("Notification hub stopped", zap.Int("closedConnections", closed))
}

// PublishEvent 作为存储订阅者注册
func (h *NotificationHub) PublishEvent(evt ComplaintEvent) {
	payload, err := json.Marshal(WSMessage{Type: MessageComplaintEvent, Data: evt})
	if err != nil {
		logger.Log.Error("Failed to encode complaint event", zap.Error(err))
		return
	}
	department := evt.Complaint.AssignedDepartment

	if h.Redis != nil && h.Channel != "" {
		msg, _ := json.Marshal(PubSubMessage{Department: department, Payload: payload})
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := h.Redis.Publish(ctx, h.Channel, msg).Err()
		cancel()
		if err == nil {
			return
		}
		logger.Log.Warn("Redis publish failed, delivering locally", zap.Error(err))
	}
	h.pushLocal(department, payload)
}

// Alert 实现 Alerter，提醒只推送到本实例的连接。
// 部门负责人只收到分配给本部门的条目，没有条目时不推送。
func (h *NotificationHub) Alert(_ context.Context, alert ReminderAlert) error {
	full, err := json.Marshal(WSMessage{Type: MessageReminderAlert, Data: alert})
	if err != nil {
		return err
	}

	byDepartment := make(map[model.DepartmentKey][]byte)
	h.each(func(c *Client) []byte {
		if c.Actor.Role != model.DepartmentHead {
			return full
		}
		if payload, ok := byDepartment[c.Actor.Department]; ok {
			return payload
		}
		var payload []byte
		if scoped := alertForDepartment(alert, c.Actor.Department); len(scoped.Items) > 0 {
			b, encErr := json.Marshal(WSMessage{Type: MessageReminderAlert, Data: scoped})
			if encErr != nil {
				logger.Log.Error("Failed to encode reminder alert", zap.Error(encErr))
			} else {
				payload = b
			}
		}
		byDepartment[c.Actor.Department] = payload
		return payload
	})
	return nil
}

func alertForDepartment(alert ReminderAlert, department model.DepartmentKey) ReminderAlert {
	scoped := alert
	scoped.Items = nil
	if department == "" {
		scoped.CriticalCount = 0
		return scoped
	}
	for _, it := range alert.Items {
		if it.Department == department {
			scoped.Items = append(scoped.Items, it)
		}
	}
	scoped.CriticalCount = len(scoped.Items)
	return scoped
}

func (h *NotificationHub) pushLocal(department model.DepartmentKey, payload []byte) {
	h.each(func(c *Client) []byte {
		if !c.accepts(department) {
			return nil
		}
		return payload
	})
}

// each 对每个连接取要发送的内容，返回 nil 表示跳过
func (h *NotificationHub) each(payloadFor func(c *Client) []byte) {
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		for client := range s.clients {
			payload := payloadFor(client)
			if payload == nil {
				continue
			}
			select {
			case client.Send <- payload:
			default:
				// 发送缓冲已满的慢客户端直接丢弃本条
			}
		}
		s.mu.RUnlock()
	}
}

func (h *NotificationHub) ClientCount() int {
	n := 0
	for i := 0; i < shardCount; i++ {
		s := h.shards[i]
		s.mu.RLock()
		n += len(s.clients)
		s.mu.RUnlock()
	}
	return n
}

func ServeWs(hub *NotificationHub, w http.ResponseWriter, r *http.Request, actor model.Actor) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.String("actorId", actor.ID))
		return
	}
	client := &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Actor:   actor,
		Limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
