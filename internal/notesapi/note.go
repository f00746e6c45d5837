package notesapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// ShareLink is the backend answer to a share request for a note.
type ShareLink struct {
	ShareURL  string    `json:"share_url"`
	ExpiresAt Timestamp `json:"expires_at"`
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// the backend may send zone-less local date times
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp accepts both RFC 3339 and zone-less timestamps. Null or empty values leave it zero.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		ts.Time = time.Time{}
		return nil
	}

	value, err := strconv.Unquote(raw)
	if err != nil {
		return fmt.Errorf("timestamp %s is not a json string", raw)
	}
	if value == "" {
		ts.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			ts.Time = t
			return nil
		}
	}

	return fmt.Errorf("unsupported timestamp format: %s", value)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}
