package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	applogger "TrendCast/pkg/logger"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return &Client{
		websocketURL:   "wss://example.invalid",
		symbols:        []string{"AAPL"},
		reconnectDelay: time.Millisecond,
		pingInterval:   10 * time.Millisecond,
		log:            applogger.Nop(),
	}
}

func TestSubscribeRequiresConnection(t *testing.T) {
	c := testClient(t)
	assert.Error(t, c.Subscribe(context.Background()))
}

func TestReadWithoutConnectionReportsError(t *testing.T) {
	c := testClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trades, errs := c.Read(ctx)

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected a read error")
	}
	// both channels close when the read loop exits
	_, open := <-trades
	assert.False(t, open)
}

func TestConnectionStateConcurrentAccess(t *testing.T) {
	c := testClient(t)
	ctx, cancel := context.WithCancel(context.Background())

	// ping goroutine observes the connection while other goroutines
	// flip the state
	_, _ = c.Read(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.IsConnected()
				_ = c.current()
				_ = c.Close()
			}
		}()
	}
	wg.Wait()
	cancel()

	assert.False(t, c.IsConnected())
}

func TestCloseIsIdempotent(t *testing.T) {
	c := testClient(t)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
}
