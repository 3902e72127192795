// Package observability aggregates runtime metrics of the relay.
package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"
)

// RelayStats is one snapshot of the relay's counters and self metrics.
type RelayStats struct {
	SessionsOpened      uint64  `json:"sessions_opened"`
	SessionsJoined      uint64  `json:"sessions_joined"`
	SessionsClosed      uint64  `json:"sessions_closed"`
	MessagesPersisted   uint64  `json:"messages_persisted"`
	MessagesCensored    uint64  `json:"messages_censored"`
	MessagesRejected    uint64  `json:"messages_rejected"`
	PersistenceFailures uint64  `json:"persistence_failures"`
	EventsDelivered     uint64  `json:"events_delivered"`
	EventsDropped       uint64  `json:"events_dropped"`
	RssMb               uint64  `json:"rss_mb"`
	CPUPercent          float64 `json:"cpu_percent"`
	NumGC               uint32  `json:"num_gc"`
}

// MonitoringManager collects counters from the coordinator and the
// transport. All counters are atomic; a snapshot is cheap enough for a
// periodic reporter and the debug page.
type MonitoringManager struct {
	log  *slog.Logger
	self *process.Process

	sessionsOpened      atomic.Uint64
	sessionsJoined      atomic.Uint64
	sessionsClosed      atomic.Uint64
	messagesPersisted   atomic.Uint64
	messagesCensored    atomic.Uint64
	messagesRejected    atomic.Uint64
	persistenceFailures atomic.Uint64
	eventsDelivered     atomic.Uint64
	eventsDropped       atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	m := &MonitoringManager{log: log}
	// Best effort: self stats stay zero if the process handle fails.
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		m.self = p
	} else {
		log.Warn("Self process handle unavailable", "err", err)
	}
	return m
}

func (m *MonitoringManager) SessionOpened()      { m.sessionsOpened.Add(1) }
func (m *MonitoringManager) SessionJoined()      { m.sessionsJoined.Add(1) }
func (m *MonitoringManager) SessionClosed()      { m.sessionsClosed.Add(1) }
func (m *MonitoringManager) MessagePersisted()   { m.messagesPersisted.Add(1) }
func (m *MonitoringManager) MessageCensored()    { m.messagesCensored.Add(1) }
func (m *MonitoringManager) MessageRejected()    { m.messagesRejected.Add(1) }
func (m *MonitoringManager) PersistenceFailure() { m.persistenceFailures.Add(1) }
func (m *MonitoringManager) EventsDelivered(n int) {
	m.eventsDelivered.Add(uint64(n))
}
func (m *MonitoringManager) EventDropped() { m.eventsDropped.Add(1) }

// GetLatest returns a point-in-time snapshot of all metrics.
func (m *MonitoringManager) GetLatest() RelayStats {
	stats := RelayStats{
		SessionsOpened:      m.sessionsOpened.Load(),
		SessionsJoined:      m.sessionsJoined.Load(),
		SessionsClosed:      m.sessionsClosed.Load(),
		MessagesPersisted:   m.messagesPersisted.Load(),
		MessagesCensored:    m.messagesCensored.Load(),
		MessagesRejected:    m.messagesRejected.Load(),
		PersistenceFailures: m.persistenceFailures.Load(),
		EventsDelivered:     m.eventsDelivered.Load(),
		EventsDropped:       m.eventsDropped.Load(),
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats.NumGC = memStats.NumGC

	if m.self != nil {
		if memInfo, err := m.self.MemoryInfo(); err == nil {
			stats.RssMb = memInfo.RSS / 1024 / 1024
		}
		if cpu, err := m.self.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
	}
	return stats
}
