package shutdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsStepsInReverse(t *testing.T) {
	m := NewManager(nil)

	var mu sync.Mutex
	var order []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}

	m.Register("loader", record("loader"))
	m.Register("controller", record("controller"))
	m.Register("window", record("window"))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"window", "controller", "loader"}, order)
	require.ErrorIs(t, m.Context().Err(), context.Canceled)

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownStepTimeout(t *testing.T) {
	m := NewManager(nil)
	m.StepTimeout = 20 * time.Millisecond

	block := make(chan struct{})
	defer close(block)

	var ran bool
	m.Register("after", func() { ran = true })
	m.Register("stuck", func() { <-block })

	start := time.Now()
	m.Shutdown()

	assert.True(t, ran)
	assert.Less(t, time.Since(start), 5*time.Second)
}
