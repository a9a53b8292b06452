package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gameconsole-backend/internal/db"
	"gameconsole-backend/internal/model"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// newTestDB opens a per-test in-memory sqlite database with migrations run.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func subscribe(t *testing.T, gormDB *gorm.DB, endpoint, consoleID string) {
	t.Helper()
	console := model.Console{ID: consoleID, Name: "Manette Switch " + consoleID, IsAvailable: true}
	require.NoError(t, gormDB.FirstOrCreate(&console, "id = ?", consoleID).Error)

	sub := model.PushSubscription{
		Endpoint: endpoint,
		P256DH:   "test_p256dh",
		Auth:     "test_auth",
		Consoles: []*model.Console{&console},
	}
	require.NoError(t, gormDB.Create(&sub).Error)
}

func TestWorkerPool_Dispatch(t *testing.T) {
	gormDB := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	wp.Dispatch("1")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "1", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_SendsFrenchPayload(t *testing.T) {
	gormDB := newTestDB(t)
	subscribe(t, gormDB, "https://example.com/push", "1")

	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			assert.Equal(t, "https://example.com/push", sub.Endpoint)
			assert.Equal(t, "La console Manette Switch 1 est de nouveau disponible !", string(payload))
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("1")
	wg.Wait()
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	gormDB := newTestDB(t)
	subscribe(t, gormDB, "https://example.com/expired", "2")

	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			wg.Done()
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("2")
	wg.Wait()

	// Give the worker a moment to run the delete after Send returns.
	assert.Eventually(t, func() bool {
		var count int64
		gormDB.Model(&model.PushSubscription{}).Count(&count)
		return count == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWorkerPool_NoSubscribersNoSend(t *testing.T) {
	gormDB := newTestDB(t)

	wp := NewWorkerPool(1, gormDB, &webpush.Options{})
	called := false
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			called = true
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wp.Dispatch("ghost")
	time.Sleep(100 * time.Millisecond)
	assert.False(t, called)
}
