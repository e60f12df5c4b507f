// internal/service/notification/interfaces/ws_handler.go
package interfaces

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"jetcart/internal/pkg/logger"
	"jetcart/internal/service/notification/application"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
		return true
	},
}

// WsHandler 把 WebSocket 连接接入 Hub，按 SKU 订阅库存事件。
type WsHandler struct {
	hub *application.Hub
}

func NewWsHandler(hub *application.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// RegisterRoutes 在 ServeMux 上注册 /ws 路由。
func (h *WsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", h.serveWs)
}

func (h *WsHandler) serveWs(w http.ResponseWriter, r *http.Request) {
	sku := r.URL.Query().Get("sku")
	if sku == "" {
		http.Error(w, "sku is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger().Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := &application.Subscriber{SKU: sku, Send: make(chan []byte, 256)}
	h.hub.Register(sub)

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)
}

// writePump 把 Hub 投递的消息写入连接，并周期性发送心跳。
func (h *WsHandler) writePump(conn *websocket.Conn, sub *application.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case payload, ok := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 已关闭该订阅
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 消费客户端消息以驱动 pong 处理，连接断开时注销订阅。
func (h *WsHandler) readPump(conn *websocket.Conn, sub *application.Subscriber) {
	defer func() {
		h.hub.Unregister(sub)
		conn.Close()
	}()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
