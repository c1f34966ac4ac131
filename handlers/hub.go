package handlers

import (
	"context"
	"sync"
)

// StreamMessage is one item of the live feed.
type StreamMessage struct {
	Type   string      `json:"type"`
	Height uint64      `json:"height"`
	Data   interface{} `json:"data"`
}

// Hub fans caught NFT receipts out to live stream subscribers. Slow subscribers are dropped.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan StreamMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

type Client struct {
	send chan StreamMessage
	hub  *Hub
}

// Messages is closed when the client is dropped or the hub stops.
func (c *Client) Messages() <-chan StreamMessage { return c.send }

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan StreamMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Subscribe(ctx context.Context) (*Client, bool) {
	client := &Client{send: make(chan StreamMessage, 64), hub: h}
	select {
	case h.register <- client:
		return client, true
	case <-ctx.Done():
		return nil, false
	case <-h.done:
		return nil, false
	}
}

func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast never blocks the ingester; messages are dropped when the queue is full.
func (h *Hub) Broadcast(msg StreamMessage) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}
