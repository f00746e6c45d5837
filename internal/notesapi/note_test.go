package notesapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNote_UnmarshalTimestamps(t *testing.T) {
	for caseName, tc := range map[string]struct {
		createdAt string
		expected  time.Time
	}{
		"rfc3339": {
			createdAt: `"2025-03-01T10:20:30Z"`,
			expected:  time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		"rfc3339-offset": {
			createdAt: `"2025-03-01T10:20:30.5+02:00"`,
			expected:  time.Date(2025, 3, 1, 8, 20, 30, 500_000_000, time.UTC),
		},
		"zone-less-micros": {
			createdAt: `"2025-03-01T10:20:30.123456"`,
			expected:  time.Date(2025, 3, 1, 10, 20, 30, 123_456_000, time.UTC),
		},
		"zone-less-seconds": {
			createdAt: `"2025-03-01T10:20:30"`,
			expected:  time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		"space-separated": {
			createdAt: `"2025-03-01 10:20:30"`,
			expected:  time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		"null": {
			createdAt: `null`,
		},
		"empty": {
			createdAt: `""`,
		},
	} {
		t.Run(caseName, func(t *testing.T) {
			raw := `{"id":"n1","title":"t","content":"c","created_at":` + tc.createdAt + `}`
			var note Note
			require.NoError(t, json.Unmarshal([]byte(raw), &note))
			assert.Equal(t, "n1", note.ID)
			assert.True(t, tc.expected.Equal(note.CreatedAt.Time), "got %s", note.CreatedAt)
			assert.True(t, note.UpdatedAt.IsZero())
		})
	}
}

func TestNote_UnmarshalInvalidTimestamp(t *testing.T) {
	var note Note
	err := json.Unmarshal([]byte(`{"created_at":"yesterday"}`), &note)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported timestamp format: yesterday")

	err = json.Unmarshal([]byte(`{"created_at":12345}`), &note)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a json string")
}

func TestTimestamp_Marshal(t *testing.T) {
	b, err := json.Marshal(ShareLink{ShareURL: "http://localhost:3000/shared/abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"share_url":"http://localhost:3000/shared/abc","expires_at":null}`, string(b))

	expiresAt := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	b, err = json.Marshal(ShareLink{ShareURL: "u", ExpiresAt: Timestamp{expiresAt}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"share_url":"u","expires_at":"2025-03-08T10:00:00Z"}`, string(b))
}

func TestErrorReasons(t *testing.T) {
	detail, message := errorReasons([]byte(`{"detail":"Note not found or expired"}`))
	assert.Equal(t, "Note not found or expired", detail)
	assert.Empty(t, message)

	detail, message = errorReasons([]byte(`{"message":"could not execute statement"}`))
	assert.Empty(t, detail)
	assert.Equal(t, "could not execute statement", message)

	detail, message = errorReasons([]byte(`{"message":"m","detail":"from detail"}`))
	assert.Equal(t, "from detail", detail)
	assert.Equal(t, "m", message)

	for _, body := range []string{`{"error":"Not Found","status":404}`, `{"detail":42}`, `<html></html>`, ``} {
		detail, message = errorReasons([]byte(body))
		assert.Empty(t, detail, body)
		assert.Empty(t, message, body)
	}
}
