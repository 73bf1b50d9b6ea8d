package respira

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	Rt "github.com/maroda/respira/types"
)

// Feed is one websocket frame
type Feed struct {
	Ts       int64          `json:"ts"` // Unix ms
	Analyses []*Rt.Analysis `json:"analyses"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var feedInterval = 1 * time.Second

// WebsocketHandler sends the latest analyses every feedInterval
// until the client goes away
func (v *View) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// a reader is needed to notice the close frame
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	send := func() bool {
		_ = conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := conn.WriteJSON(v.GetFeed()); err != nil {
			slog.Debug("Websocket closed", slog.Any("Error", err))
			return false
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-ticker.C:
			if !send() {
				return
			}
		case <-gone:
			return
		}
	}
}

func (v *View) GetFeed() Feed {
	return Feed{
		Ts:       time.Now().UnixMilli(),
		Analyses: v.Snapshot(),
	}
}
