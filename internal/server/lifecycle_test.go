package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (b *blockingService) svc(name string) Service {
	return Service{
		Name: name,
		Start: func() error {
			b.started.Store(true)
			for !b.stopped.Load() {
				time.Sleep(10 * time.Millisecond)
			}
			return nil
		},
		Stop: func() {
			b.stopped.Store(true)
		},
	}
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	logger := zaptest.NewLogger(t)
	lc := NewLifecycle(logger)

	svc1 := &blockingService{}
	svc2 := &blockingService{}

	lc.Add(svc1.svc("svc1"))
	lc.Add(svc2.svc("svc2"))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if svc1.started.Load() && svc2.started.Load() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("services did not start in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleStopsOnServiceFailure(t *testing.T) {
	logger := zaptest.NewLogger(t)
	lc := NewLifecycle(logger)

	other := &blockingService{}
	lc.Add(other.svc("healthy"))

	failErr := errors.New("listen failed")
	var failStopped atomic.Bool
	lc.Add(Service{
		Name:  "broken",
		Start: func() error { return failErr },
		Stop:  func() { failStopped.Store(true) },
	})

	done := make(chan error, 1)
	go func() {
		done <- lc.Run(context.Background())
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, failErr)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down after failure")
	}

	assert.True(t, other.stopped.Load())
	assert.True(t, failStopped.Load())
}
