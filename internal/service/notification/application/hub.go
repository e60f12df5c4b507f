// internal/service/notification/application/hub.go
package application

import (
	"sync"

	"jetcart/internal/pkg/logger"
)

// StockNotification 是推送给订阅方的库存变动消息。
type StockNotification struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	OccurredAt    int64  `json:"occurred_at"`
}

// Subscriber 是一个按 SKU 订阅的推送目标。
type Subscriber struct {
	SKU  string
	Send chan []byte
}

// Hub 维护所有活跃的订阅并按 SKU 广播消息。
type Hub struct {
	subscribers map[string]map[*Subscriber]struct{} // sku -> 订阅集合
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan broadcastMsg
	done        chan struct{}
	closeOnce   sync.Once
}

type broadcastMsg struct {
	sku     string
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan broadcastMsg, 64),
		done:        make(chan struct{}),
	}
}

// Run 是 Hub 的主循环，串行处理注册、注销与广播。
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			set, ok := h.subscribers[sub.SKU]
			if !ok {
				set = make(map[*Subscriber]struct{})
				h.subscribers[sub.SKU] = set
			}
			set[sub] = struct{}{}
			logger.Logger().Debug().Str("sku", sub.SKU).Msg("subscriber registered")
		case sub := <-h.unregister:
			if set, ok := h.subscribers[sub.SKU]; ok {
				if _, ok := set[sub]; ok {
					delete(set, sub)
					close(sub.Send)
					if len(set) == 0 {
						delete(h.subscribers, sub.SKU)
					}
				}
			}
		case msg := <-h.broadcast:
			for sub := range h.subscribers[msg.sku] {
				select {
				case sub.Send <- msg.payload:
				default:
					// 慢消费者：丢弃连接而不是阻塞主循环
					delete(h.subscribers[msg.sku], sub)
					close(sub.Send)
				}
			}
		case <-h.done:
			for _, set := range h.subscribers {
				for sub := range set {
					close(sub.Send)
				}
			}
			h.subscribers = make(map[string]map[*Subscriber]struct{})
			return
		}
	}
}

// Register 注册一个订阅方。
func (h *Hub) Register(sub *Subscriber) {
	h.register <- sub
}

// Unregister 注销订阅方并关闭其发送通道。
func (h *Hub) Unregister(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Broadcast 把消息投递给该 SKU 的所有订阅方。
func (h *Hub) Broadcast(sku string, payload []byte) {
	select {
	case h.broadcast <- broadcastMsg{sku: sku, payload: payload}:
	case <-h.done:
	}
}

// Close 停止主循环并断开全部订阅。
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
