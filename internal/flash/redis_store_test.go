package flash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestRedisStore_PutAndPop(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Minute)
	store.NewIDFunc = func() string { return "flash-1" }

	msg := Message{
		Text:      "Share URL created",
		ShareURL:  "http://localhost:3000/shared/abc",
		ExpiresAt: time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC),
	}
	msgBytes, err := encode(msg)
	require.NoError(t, err)

	ctx := context.Background()
	mock.ExpectSet(keyPrefix+"flash-1", string(msgBytes), time.Minute).SetVal("OK")
	id, err := store.Put(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, "flash-1", id)

	mock.ExpectGetDel(keyPrefix + "flash-1").SetVal(string(msgBytes))
	popped, err := store.Pop(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, popped)
	assert.Equal(t, msg.Text, popped.Text)
	assert.Equal(t, msg.ShareURL, popped.ShareURL)
	assert.True(t, msg.ExpiresAt.Equal(popped.ExpiresAt))

	// read once
	mock.ExpectGetDel(keyPrefix + "flash-1").SetErr(redis.Nil)
	popped, err = store.Pop(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, popped)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Errors(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	store := NewRedisStore(db, time.Minute)
	store.NewIDFunc = func() string { return "flash-2" }
	ctx := context.Background()

	msg := Message{Text: "hi"}
	msgBytes, err := encode(msg)
	require.NoError(t, err)

	mock.ExpectSet(keyPrefix+"flash-2", string(msgBytes), time.Minute).SetErr(errors.New("connection refused"))
	id, err := store.Put(ctx, msg)
	require.Error(t, err)
	assert.Empty(t, id)
	assert.Contains(t, err.Error(), "connection refused")

	mock.ExpectGetDel(keyPrefix + "flash-2").SetErr(errors.New("connection refused"))
	popped, err := store.Pop(ctx, "flash-2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Nil(t, popped)

	mock.ExpectGetDel(keyPrefix + "flash-2").SetVal("{not json")
	popped, err = store.Pop(ctx, "flash-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal flash message")
	assert.Nil(t, popped)

	assert.NoError(t, mock.ExpectationsWereMet())
}
