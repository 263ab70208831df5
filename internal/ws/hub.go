package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-listings/internal/goroutine"
	"github.com/ignatzorin/marketplace-listings/internal/logger"
)

// Hub управляет всеми WebSocket клиентами продавцов.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
}

type message struct {
	sellerID uuid.UUID
	payload  []byte
}

// Envelope - формат сообщения: "type" содержит имя события, "data" - полезную нагрузку.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба до завершения ctx.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.sellerID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishToSeller ставит событие в очередь для всех подключений продавца.
// Не блокируется: при переполненной очереди событие отбрасывается.
func (h *Hub) PublishToSeller(sellerID uuid.UUID, event string, data any) {
	raw, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		logger.L().WithError(err).WithField("event", event).Error("ws: не удалось сериализовать сообщение")
		return
	}

	select {
	case h.broadcast <- message{sellerID: sellerID, payload: raw}:
	default:
		logger.L().WithField("event", event).Warn("ws: очередь переполнена, событие отброшено")
	}
}

// ClientCount - число подключений продавца.
func (h *Hub) ClientCount(sellerID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sellerID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.sellerID]; !ok {
		h.clients[client.sellerID] = make(map[*Client]struct{})
	}
	h.clients[client.sellerID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.sellerID]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			client.closeSend()
		}
		if len(clients) == 0 {
			delete(h.clients, client.sellerID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sellerID, clients := range h.clients {
		for client := range clients {
			client.closeSend()
		}
		delete(h.clients, sellerID)
	}
}

func (h *Hub) send(sellerID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[sellerID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент: закрываем асинхронно, чтобы не блокировать хаб.
			c := client
			goroutine.SafeGo(c.Close)
		}
	}
}
