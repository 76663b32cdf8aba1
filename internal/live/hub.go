// Package live implements the product feed: a single broadcast topic pushing
// the full current catalog to every connected websocket client whenever a
// product is added or removed. Delivery is fire-and-forget; there is no
// backlog or replay.
package live

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"storefront/internal/models"
	"storefront/internal/store"
)

// Event is the wire frame in both directions.
type Event struct {
	// Event names: "products" (server push), "getProducts", "addProduct",
	// "deleteProduct" (client requests), "error".
	Event   string           `json:"event"`
	Payload []models.Product `json:"payload,omitempty"`
	Product *models.Product  `json:"product,omitempty"`
	ID      string           `json:"id,omitempty"`
	Message string           `json:"message,omitempty"`
}

type Hub struct {
	catalog store.ProductStore

	register   chan *client
	unregister chan *client
	broadcast  chan []models.Product
	clients    map[*client]bool

	upgrader websocket.Upgrader
}

func NewHub(catalog store.ProductStore) *Hub {
	return &Hub{
		catalog:    catalog,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []models.Product, 8),
		clients:    make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The credential cookie is already checked before the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run owns the client set; it is the only goroutine touching it.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case products := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- Event{Event: "products", Payload: products}:
				default:
					// Slow consumer: drop it rather than block the feed.
					// Closing the connection lets both pumps wind down and
					// keeps the send channel safe for the read side.
					delete(h.clients, c)
					c.conn.Close()
				}
			}
		}
	}
}

// Publish snapshots the catalog and queues it for every subscriber. The
// caller only pays for the snapshot; fan-out happens on the hub goroutine.
func (h *Hub) Publish(ctx context.Context) {
	products, err := h.catalog.All(ctx)
	if err != nil {
		log.Printf("Failed to snapshot catalog for live feed: %v", err)
		return
	}
	h.broadcast <- products
}

// Serve upgrades the request to a websocket and attaches the client to the
// feed. The resolved user gates client-originated mutations.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, user *models.User) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan Event, 16),
		user: user,
	}

	// New subscribers immediately receive the current catalog; queued before
	// the pumps start so it is the first frame out.
	if products, err := h.catalog.All(r.Context()); err != nil {
		log.Printf("Failed to load catalog for new subscriber: %v", err)
	} else {
		c.send <- Event{Event: "products", Payload: products}
	}

	h.register <- c
	go c.writePump()
	go c.readPump()
}
