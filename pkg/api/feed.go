// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/luxfi/lpx/pkg/log"
	"github.com/luxfi/lpx/pkg/trade"
)

// Feed streams trade receipts to websocket subscribers.
type Feed struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	log      log.Logger
}

// NewFeed creates an empty feed hub.
func NewFeed(logger log.Logger) *Feed {
	return &Feed{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger,
	}
}

// Handle upgrades the connection and keeps it subscribed until it closes.
func (f *Feed) Handle(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		f.log.Errorf("feed upgrade failed: %v", err)
		return
	}

	f.mu.Lock()
	f.clients[conn] = struct{}{}
	f.mu.Unlock()

	// Reads are discarded; the feed is broadcast-only. A read error means
	// the client went away.
	go func() {
		defer f.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a trade receipt to every subscriber.
func (f *Feed) Broadcast(result *trade.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		if err := conn.WriteJSON(result); err != nil {
			conn.Close()
			delete(f.clients, conn)
		}
	}
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn.Close()
	delete(f.clients, conn)
}
