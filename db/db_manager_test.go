package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"todo-app/internal/logging"
)

func TestDBManager_SerializesOperations(t *testing.T) {
	m := NewDBManager(logging.Discard())
	defer m.Stop()

	var (
		mu      sync.Mutex
		running int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.ExecuteOperation(context.Background(), func() error {
				mu.Lock()
				running++
				if running > maxSeen {
					maxSeen = running
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestDBManager_ReturnsOperationError(t *testing.T) {
	m := NewDBManager(logging.Discard())
	defer m.Stop()

	boom := errors.New("boom")
	err := m.ExecuteOperation(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestDBManager_Stopped(t *testing.T) {
	m := NewDBManager(logging.Discard())
	m.Stop()

	err := m.ExecuteOperation(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrManagerStopped)
}
