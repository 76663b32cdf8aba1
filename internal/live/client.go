package live

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"storefront/internal/models"
	"storefront/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Event
	user *models.User
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Live feed read error: %v", err)
			}
			return
		}
		c.handle(ev)
	}
}

// handle dispatches a client-originated event. Mutations run through the
// product store with the same role check as the HTTP API; the feed is not a
// trusted write path.
func (c *client) handle(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch ev.Event {
	case "getProducts":
		products, err := c.hub.catalog.All(ctx)
		if err != nil {
			log.Printf("Failed to refresh catalog for subscriber: %v", err)
			c.trySend(Event{Event: "error", Message: "Internal server error"})
			return
		}
		c.trySend(Event{Event: "products", Payload: products})

	case "addProduct":
		if !c.user.Role.Allows(models.RoleAdmin) {
			c.trySend(Event{Event: "error", Message: "Access denied"})
			return
		}
		if ev.Product == nil || ev.Product.Title == "" || ev.Product.Price < 0 || ev.Product.Stock < 0 {
			c.trySend(Event{Event: "error", Message: "Invalid product"})
			return
		}
		if err := c.hub.catalog.Add(ctx, ev.Product); err != nil {
			log.Printf("Failed to add product via live feed: %v", err)
			c.trySend(Event{Event: "error", Message: "Internal server error"})
			return
		}
		c.hub.Publish(ctx)

	case "deleteProduct":
		if !c.user.Role.Allows(models.RoleAdmin) {
			c.trySend(Event{Event: "error", Message: "Access denied"})
			return
		}
		if err := c.hub.catalog.Delete(ctx, ev.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.trySend(Event{Event: "error", Message: "Product not found"})
			} else {
				log.Printf("Failed to delete product via live feed: %v", err)
				c.trySend(Event{Event: "error", Message: "Internal server error"})
			}
			return
		}
		c.hub.Publish(ctx)

	default:
		c.trySend(Event{Event: "error", Message: "Unknown event"})
	}
}

// trySend queues an event for this client only, dropping it if the client is
// already backed up.
func (c *client) trySend(ev Event) {
	select {
	case c.send <- ev:
	default:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
