package services

import (
	"time"

	"github.com/yeremiapane/restaurant-pos/utils"
)

const DefaultQueueRefreshInterval = 5 * time.Second

// QueueListener receives the periodic kitchen queue snapshot.
type QueueListener interface {
	BroadcastQueueStatus(status KitchenQueueStatus)
}

// QueueSource is the read side of the kitchen queue.
type QueueSource interface {
	GetKitchenQueueStatus() KitchenQueueStatus
}

// QueueMonitor is the host-side refresh tick: it polls the queue projection and
// pushes it to the listener so elapsed minutes stay current on displays.
type QueueMonitor struct {
	Source   QueueSource
	Listener QueueListener
	StopChan chan struct{}
	Interval time.Duration
}

func NewQueueMonitor(source QueueSource, listener QueueListener, interval time.Duration) *QueueMonitor {
	if interval <= 0 {
		interval = DefaultQueueRefreshInterval
	}
	return &QueueMonitor{
		Source:   source,
		Listener: listener,
		StopChan: make(chan struct{}),
		Interval: interval,
	}
}

func (qm *QueueMonitor) Start() {
	go func() {
		ticker := time.NewTicker(qm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				qm.Tick()
			case <-qm.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Infof("Kitchen queue monitor started (every %s)", qm.Interval)
}

func (qm *QueueMonitor) Stop() {
	close(qm.StopChan)
}

// Tick pushes one snapshot. Start calls it on every interval.
func (qm *QueueMonitor) Tick() {
	status := qm.Source.GetKitchenQueueStatus()
	if status.QueueLength > 0 {
		utils.InfoLogger.Debugf("Kitchen queue: %d tickets, %d min wait", status.QueueLength, status.EstimatedWaitTime)
	}
	qm.Listener.BroadcastQueueStatus(status)
}
