package devserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/decker502/cosmorun/pkg/systems"
)

const (
	// MaxEventClients WebSocket 客户端数量上限
	MaxEventClients = 32

	// eventWriteWait 单条消息的写超时，超时的客户端被断开
	eventWriteWait = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 调试服务只绑定本机地址，允许任意来源的预览页面连接
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub 把生成事件广播给所有 WebSocket 客户端，实现 systems.SpawnListener
//
// OnSpawnEvent 在模拟 goroutine 中调用，只做非阻塞投递；
// 写连接由 Run 所在的 goroutine 完成，缓冲区满时丢弃事件。
// 写入时不持有 mu，停滞的客户端最多阻塞 Run 一个 writeWait。
type EventHub struct {
	clients    map[*websocket.Conn]struct{}
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
	writeWait  time.Duration

	dropped atomic.Int64
}

// NewEventHub 创建事件中心
func NewEventHub() *EventHub {
	return &EventHub{
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		writeWait:  eventWriteWait,
	}
}

// Run 处理注册、注销和广播，直到 ctx 结束
// 必须在接受连接之前启动，且只能调用一次
func (h *EventHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[EventHub] Client connected (%d total)", count)

		case conn := <-h.unregister:
			h.remove(conn)

		case message := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(h.writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("[EventHub] Write failed, dropping client: %v", err)
					h.remove(conn)
				}
			}
		}
	}
}

// remove 注销并关闭连接，重复调用无副作用
func (h *EventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()
	if ok {
		log.Printf("[EventHub] Client disconnected (%d remaining)", count)
	}
}

// OnSpawnEvent 实现 systems.SpawnListener
func (h *EventHub) OnSpawnEvent(ev systems.SpawnEvent) {
	h.Broadcast("spawn", ev)
}

// Broadcast 投递一条消息，缓冲区满时丢弃
func (h *EventHub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		log.Printf("[EventHub] Failed to marshal %s: %v", event, err)
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
	}
}

// ClientCount 返回已连接的客户端数量
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped 返回因缓冲区满而丢弃的消息数量
func (h *EventHub) Dropped() int {
	return int(h.dropped.Load())
}

// HandleWebSocket 升级连接并注册到事件中心
func (h *EventHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.ClientCount() >= MaxEventClients {
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[EventHub] WebSocket upgrade error: %v", err)
		return
	}
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	// 客户端只接收事件；读循环用于感知断开
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
