package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const keyPrefix = "notesweb-flash||"

var ErrNotFound = errors.New("flash message not found")

// Message is a one-shot message carried from a form post to the page rendered after the redirect.
type Message struct {
	Text      string    `json:"text"`
	ShareURL  string    `json:"share_url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Store keeps flash messages until they are popped once, or their TTL runs out.
type Store interface {
	Put(ctx context.Context, msg Message) (string, error)
	Pop(ctx context.Context, id string) (*Message, error)
}

func newID() string {
	return uuid.NewString()
}

func encode(msg Message) ([]byte, error) {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal flash message: %w", err)
	}
	return msgBytes, nil
}

func decode(msgBytes []byte) (*Message, error) {
	msg := &Message{}
	if err := json.Unmarshal(msgBytes, msg); err != nil {
		return nil, fmt.Errorf("unmarshal flash message: %w", err)
	}
	return msg, nil
}
