package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	queueSize      = 256
	clientSendSize = 32
)

// Hub keeps the live subscribers of every auction and fans messages out to them. Only Run
// mutates the registry, the mutex exists for readers outside the loop.
type Hub struct {
	mu sync.RWMutex
	// auction id -> subscribed clients
	clients map[string]map[*Client]struct{}

	broadcast  chan *Message
	direct     chan *directMessage
	register   chan *Client
	unregister chan *Client

	// InboundMessages is drained by module handlers (e.g. the auction bid handler).
	InboundMessages chan *ClientMessage
}

// Client is one websocket connection watching a single auction.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Buffered channel of outbound messages, closed by the hub on removal.
	Send      chan []byte
	AuctionID string
	// UserID is empty for anonymous watchers, they may listen but not bid.
	UserID string
	ID     string
}

// NewClient builds a client with a buffered outbound queue.
func NewClient(hub *Hub, conn *websocket.Conn, auctionID, userID, id string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, clientSendSize),
		AuctionID: auctionID,
		UserID:    userID,
		ID:        id,
	}
}

type Message struct {
	AuctionID string
	Data      []byte
}

// ClientMessage wraps a frame read from a client so handlers know who sent it.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

type directMessage struct {
	client *Client
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[string]map[*Client]struct{}),
		broadcast:       make(chan *Message, queueSize),
		direct:          make(chan *directMessage, queueSize),
		register:        make(chan *Client, queueSize),
		unregister:      make(chan *Client, queueSize),
		InboundMessages: make(chan *ClientMessage, queueSize),
	}
}

// Run owns the registry until ctx is done, then closes every client queue so the write pumps
// say goodbye to their peers.
func (h *Hub) Run(ctx context.Context) {
	log.Info("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			group, ok := h.clients[client.AuctionID]
			if !ok {
				group = make(map[*Client]struct{})
				h.clients[client.AuctionID] = group
			}
			group[client] = struct{}{}
			h.mu.Unlock()
			log.Info("client registered",
				zap.String("client_id", client.ID),
				zap.String("auction_id", client.AuctionID),
				zap.String("remote_addr", client.remoteAddr()),
				zap.Int("auction_clients", len(group)),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			removed := h.remove(client)
			h.mu.Unlock()
			if removed {
				log.Info("client unregistered",
					zap.String("client_id", client.ID),
					zap.String("auction_id", client.AuctionID),
					zap.String("remote_addr", client.remoteAddr()),
				)
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			group := h.clients[message.AuctionID]
			log.Debug("broadcasting to auction",
				zap.String("auction_id", message.AuctionID),
				zap.Int("clients", len(group)),
			)
			for client := range group {
				h.deliver(client, message.Data)
			}
			h.mu.Unlock()

		case msg := <-h.direct:
			h.mu.Lock()
			if _, ok := h.clients[msg.client.AuctionID][msg.client]; ok {
				h.deliver(msg.client, msg.data)
			}
			h.mu.Unlock()
		}
	}
}

// deliver drops a client whose queue is full, a stalled reader must not hold up the others.
// Callers hold h.mu.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.remove(client)
		log.Warn("client queue full, unregistering",
			zap.String("client_id", client.ID),
			zap.String("auction_id", client.AuctionID),
			zap.String("remote_addr", client.remoteAddr()),
		)
	}
}

// remove reports whether client was still registered. Callers hold h.mu.
func (h *Hub) remove(client *Client) bool {
	group, ok := h.clients[client.AuctionID]
	if !ok {
		return false
	}
	if _, ok := group[client]; !ok {
		return false
	}
	delete(group, client)
	close(client.Send)
	if len(group) == 0 {
		delete(h.clients, client.AuctionID)
		log.Debug("auction group removed as empty", zap.String("auction_id", client.AuctionID))
	}
	return true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, group := range h.clients {
		for client := range group {
			h.remove(client)
		}
	}
}

// Subscribers returns how many clients currently watch auctionID.
func (h *Hub) Subscribers(auctionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[auctionID])
}

// RegisterClient queues client for registration, closing its connection if the hub is saturated.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("register queue full, rejecting client",
			zap.String("client_id", client.ID),
			zap.String("auction_id", client.AuctionID),
		)
		if client.Conn != nil {
			_ = client.Conn.Close()
		}
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("unregister queue full",
			zap.String("client_id", client.ID),
			zap.String("auction_id", client.AuctionID),
		)
	}
}

// BroadcastMessageToAuction sends data to every client watching auctionID. It never blocks,
// a full queue drops the message.
func (h *Hub) BroadcastMessageToAuction(auctionID string, data []byte) {
	select {
	case h.broadcast <- &Message{AuctionID: auctionID, Data: data}:
	default:
		log.Error("broadcast queue full, message dropped", zap.String("auction_id", auctionID))
	}
}

// SendToClient queues data for a single client. Going through the hub means a client removed
// in the meantime is skipped instead of written to after its queue was closed.
func (h *Hub) SendToClient(client *Client, data []byte) {
	select {
	case h.direct <- &directMessage{client: client, data: data}:
	default:
		log.Warn("direct queue full, message dropped", zap.String("client_id", client.ID))
	}
}

func (c *Client) remoteAddr() string {
	if c.Conn == nil || c.Conn.Conn == nil {
		return ""
	}
	return c.Conn.RemoteAddr().String()
}

// ReadPump forwards client frames to the hub inbound queue. It runs in its own goroutine per
// client and returns when the connection fails or ctx is done.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Debug("read pump stopped", zap.String("client_id", c.ID), zap.String("auction_id", c.AuctionID))
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error",
					zap.String("client_id", c.ID),
					zap.String("auction_id", c.AuctionID),
					zap.Error(err),
				)
			}
			return
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("inbound queue full, dropping client message",
				zap.String("client_id", c.ID),
				zap.String("auction_id", c.AuctionID),
			)
		}
	}
}

// WritePump is the only writer of the connection. Messages queued while a frame is being
// written are appended to it, newline separated.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
		log.Debug("write pump stopped", zap.String("client_id", c.ID), zap.String("auction_id", c.AuctionID))
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Warn("next writer failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}
			_, _ = w.Write(message)
			for n := len(c.Send); n > 0; n-- {
				queued, ok := <-c.Send
				if !ok {
					break
				}
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(queued)
			}
			if err := w.Close(); err != nil {
				log.Warn("close writer failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug("ping failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}
		}
	}
}
