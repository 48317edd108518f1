package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueListener struct {
	mu       sync.Mutex
	statuses []KitchenQueueStatus
}

func (l *queueListener) BroadcastQueueStatus(status KitchenQueueStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses = append(l.statuses, status)
}

func (l *queueListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.statuses)
}

func TestQueueMonitorTick(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock())
	_, _ = svc.StartNewOrder("table 1")
	_, err := svc.AddItemToCurrentOrder(burger.ID, 1, "")
	require.NoError(t, err)
	_, err = svc.SendCurrentOrderToKitchen()
	require.NoError(t, err)

	listener := &queueListener{}
	qm := NewQueueMonitor(svc, listener, 0)
	assert.Equal(t, DefaultQueueRefreshInterval, qm.Interval)

	qm.Tick()

	require.Equal(t, 1, listener.count())
	assert.Equal(t, 1, listener.statuses[0].QueueLength)
}

func TestQueueMonitorStartStop(t *testing.T) {
	svc, _ := newTestService(t, newFakeClock())
	listener := &queueListener{}
	qm := NewQueueMonitor(svc, listener, 10*time.Millisecond)

	qm.Start()
	assert.Eventually(t, func() bool { return listener.count() >= 2 }, time.Second, 5*time.Millisecond)
	qm.Stop()
}
