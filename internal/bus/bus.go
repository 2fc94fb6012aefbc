// Package bus is the broadcast channel adapter: a thin wrapper around the
// websocket transport that delivers named events in the order the transport
// delivers them. It adds no buffering or reordering of its own.
package bus

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HunterLewis000/newspaper-app/internal/model"
)

// Event names are the wire contract shared by every connected client.
const (
	EventArticleAdded       = "article_added"
	EventArticleUpdated     = "article_updated"
	EventStatusUpdated      = "status_updated"
	EventStatusColorUpdated = "status_color_updated"
	EventEditorUpdated      = "editor_updated"
	EventCatUpdated         = "cat_updated"
	EventArticleDeleted     = "article_deleted"
	EventArticleArchived    = "article_archived"
	EventArticleActivated   = "article_activated"
	EventOrderUpdated       = "update_article_order"
	EventFileUploaded       = "file_uploaded"
	EventFileDeleted        = "file_deleted"
)

// Envelope is one broadcast event. Only the fields a given event carries are
// populated; patch fields are pointers so "absent" and "set to empty" stay
// distinguishable.
type Envelope struct {
	Event string `json:"event"`

	ID int64 `json:"id,omitempty"`

	// article_updated
	Title    *string `json:"title,omitempty"`
	Author   *string `json:"author,omitempty"`
	Deadline *string `json:"deadline,omitempty"`

	// status_updated / status_color_updated / editor_updated / cat_updated
	Status      model.Status      `json:"status,omitempty"`
	StatusColor model.StatusColor `json:"status_color,omitempty"`
	Editor      *model.Editor     `json:"editor,omitempty"`
	Cat         model.Category    `json:"cat,omitempty"`

	// article_added
	Article *model.Article `json:"article,omitempty"`

	// update_article_order
	Order []int64 `json:"order,omitempty"`

	// file_uploaded / file_deleted
	ArticleID int64 `json:"article_id,omitempty"`
	FileID    int64 `json:"file_id,omitempty"`
}

// Conn is a subscriber/publisher handle on one websocket connection.
// Reads preserve the transport's per-connection arrival order.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
}

// Dial connects to the server's broadcast endpoint. serverURL is the plain
// http(s) base URL; the scheme is rewritten for the websocket handshake.
func Dial(ctx context.Context, serverURL string) (*Conn, error) {
	u := strings.TrimRight(strings.TrimSpace(serverURL), "/")
	u = strings.Replace(u, "http://", "ws://", 1)
	u = strings.Replace(u, "https://", "wss://", 1)

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u+"/ws", nil)
	if err != nil {
		return nil, err
	}
	return &Conn{ws: ws}, nil
}

// Subscribe starts the read loop and returns the inbound event stream.
// The channel closes when the connection drops or ctx is cancelled.
// Frames that do not decode as envelopes are skipped, not fatal.
func (c *Conn) Subscribe(ctx context.Context) <-chan Envelope {
	out := make(chan Envelope, 16)
	go func() {
		defer close(out)
		for {
			_, data, err := c.ws.ReadMessage()
			if err != nil {
				return
			}
			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				continue
			}
			if strings.TrimSpace(env.Event) == "" {
				continue
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Publish emits one fire-and-forget event. Delivery is the transport's
// problem; callers never wait for fanout.
func (c *Conn) Publish(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
