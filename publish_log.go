package book

import "sync"

// PublishLog is an interface for publishing order book logs (trades, opens, cancels).
//
// IMPORTANT: Implementations must either:
//  1. Process logs synchronously before returning, OR
//  2. Clone the BookLog data before returning
//
// The caller recycles BookLog objects to a sync.Pool after Publish returns,
// so any asynchronous processing must work with cloned data.
type PublishLog interface {
	Publish(...*BookLog)
}

// MemoryPublishLog stores logs in memory, useful for testing.
// It copies each log by value on Publish, which satisfies the clone
// requirement above.
type MemoryPublishLog struct {
	mu   sync.Mutex
	logs []BookLog
}

// NewMemoryPublishLog creates a new MemoryPublishLog.
func NewMemoryPublishLog() *MemoryPublishLog {
	return &MemoryPublishLog{}
}

// Publish records a copy of each log.
func (m *MemoryPublishLog) Publish(logs ...*BookLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, log := range logs {
		m.logs = append(m.logs, *log)
	}
}

// Logs returns a point-in-time snapshot of everything published so far.
// The returned logs are copies, later publishes do not mutate them.
func (m *MemoryPublishLog) Logs() []*BookLog {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]BookLog, len(m.logs))
	copy(snapshot, m.logs)

	logs := make([]*BookLog, len(snapshot))
	for i := range snapshot {
		logs[i] = &snapshot[i]
	}
	return logs
}

// DiscardPublishLog discards all logs, useful for benchmarking.
type DiscardPublishLog struct {
}

// NewDiscardPublishLog creates a new DiscardPublishLog.
func NewDiscardPublishLog() *DiscardPublishLog {
	return &DiscardPublishLog{}
}

// Publish does nothing.
func (p *DiscardPublishLog) Publish(logs ...*BookLog) {

}
