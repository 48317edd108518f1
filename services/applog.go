package services

import (
	"fmt"
	"sync"

	"github.com/yeremiapane/restaurant-pos/utils"
)

// AppendLog is an append-only record. The ledger and the completed-order
// history grow for the life of the process; eviction or archival is left to
// the implementation plugged in here.
type AppendLog[T any] interface {
	Append(entry T)
	All() []T
	Len() int
}

type MemoryLog[T any] struct {
	entries []T
}

func NewMemoryLog[T any]() *MemoryLog[T] {
	return &MemoryLog[T]{}
}

func (l *MemoryLog[T]) Append(entry T) {
	l.entries = append(l.entries, entry)
}

// All returns a copy of the entries in append order.
func (l *MemoryLog[T]) All() []T {
	out := make([]T, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *MemoryLog[T]) Len() int {
	return len(l.entries)
}

// Sink receives every entry appended to an ArchivingLog. It may block on I/O;
// it is only ever called from the log's writer goroutine.
type Sink[T any] interface {
	Archive(entry T) error
}

const DefaultArchiveQueueSize = 256

// ArchivingLog keeps each entry in the wrapped log and queues it for the sink.
// Append never waits on the sink: a single writer goroutine drains the queue,
// and entries that find it full are dropped from the archive with a logged
// error. The in-memory entry always stays.
type ArchivingLog[T any] struct {
	AppendLog[T]
	sink Sink[T]
	name string

	mu       sync.Mutex
	drained  *sync.Cond
	inflight int
	closed   bool
	queue    chan T
	done     chan struct{}
}

func NewArchivingLog[T any](name string, inner AppendLog[T], sink Sink[T], queueSize int) *ArchivingLog[T] {
	if queueSize <= 0 {
		queueSize = DefaultArchiveQueueSize
	}
	l := &ArchivingLog[T]{
		AppendLog: inner,
		sink:      sink,
		name:      name,
		queue:     make(chan T, queueSize),
		done:      make(chan struct{}),
	}
	l.drained = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *ArchivingLog[T]) Append(entry T) {
	l.AppendLog.Append(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		utils.ErrorLogger.WithField("log", l.name).Error("Archive closed, entry not archived")
		return
	}
	select {
	case l.queue <- entry:
		l.inflight++
	default:
		utils.ErrorLogger.WithField("log", l.name).Error("Archive queue full, entry not archived")
	}
}

// Flush waits until every entry queued so far has reached the sink.
func (l *ArchivingLog[T]) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.inflight > 0 {
		l.drained.Wait()
	}
}

// Close drains the queue and stops the writer. Later appends stay in memory only.
func (l *ArchivingLog[T]) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *ArchivingLog[T]) run() {
	defer close(l.done)
	for entry := range l.queue {
		if err := l.sink.Archive(entry); err != nil {
			utils.ErrorLogger.WithField("log", l.name).Errorf("Archive failed: %v", err)
		}
		l.mu.Lock()
		l.inflight--
		if l.inflight == 0 {
			l.drained.Broadcast()
		}
		l.mu.Unlock()
	}
}

func (l *ArchivingLog[T]) String() string {
	return fmt.Sprintf("%s(%d entries)", l.name, l.Len())
}
