package flash

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coocood/freecache"
)

// freecache does not go below its 512KB minimum
const memoryStoreSize = 1024 * 1024

// MemoryStore keeps flash messages in process. Only usable when a single instance is running.
type MemoryStore struct {
	mu    sync.Mutex
	cache *freecache.Cache
	ttl   time.Duration
	// ability to inject the id generator (for unit testing)
	NewIDFunc func() string
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache:     freecache.NewCache(memoryStoreSize),
		ttl:       ttl,
		NewIDFunc: newID,
	}
}

func (s *MemoryStore) Put(_ context.Context, msg Message) (string, error) {
	msgBytes, err := encode(msg)
	if err != nil {
		return "", err
	}

	id := s.NewIDFunc()
	if err := s.cache.Set([]byte(keyPrefix+id), msgBytes, int(s.ttl.Seconds())); err != nil {
		return "", fmt.Errorf("cache set flash %s: %w", id, err)
	}

	return id, nil
}

func (s *MemoryStore) Pop(_ context.Context, id string) (*Message, error) {
	key := []byte(keyPrefix + id)

	s.mu.Lock()
	defer s.mu.Unlock()

	msgBytes, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cache get flash %s: %w", id, err)
	}
	s.cache.Del(key)

	return decode(msgBytes)
}
