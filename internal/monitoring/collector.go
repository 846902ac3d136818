// Package monitoring tracks per-event outcome counters for the webhook
// service.
package monitoring

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/community-sync/internal/pipeline"
)

// Snapshot holds a point-in-time view of event processing since start.
type Snapshot struct {
	Received    int `json:"received"`
	Duplicates  int `json:"duplicates"`
	Updates     int `json:"updates"`
	NewContacts int `json:"new_contacts"`
	NewLeads    int `json:"new_leads"`
	Failed      int `json:"failed"`

	StartedAt   time.Time `json:"started_at"`
	CollectedAt time.Time `json:"collected_at"`
}

// Collector aggregates pipeline outcomes. Safe for concurrent use.
type Collector struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewCollector creates a collector with the start time set to now.
func NewCollector() *Collector {
	return &Collector{snap: Snapshot{StartedAt: time.Now().UTC()}}
}

// RecordDuplicate counts an event collapsed by the deduper.
func (c *Collector) RecordDuplicate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Received++
	c.snap.Duplicates++
}

// Record counts a completed pipeline run by its resolution kind.
func (c *Collector) Record(out *pipeline.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Received++

	if !out.Completed() {
		c.snap.Failed++
		return
	}
	switch out.Resolution.Kind {
	case pipeline.ResolvedExisting:
		c.snap.Updates++
	case pipeline.ResolvedNewContact:
		c.snap.NewContacts++
	case pipeline.ResolvedNewLead:
		c.snap.NewLeads++
	}
}

// Collect returns a copy of the current counters.
func (c *Collector) Collect() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snap
	snap.CollectedAt = time.Now().UTC()
	return snap
}

// LogSummary writes the counters to the given logger, used at shutdown.
func (c *Collector) LogSummary(log *zap.Logger) {
	snap := c.Collect()
	log.Info("event summary",
		zap.Int("received", snap.Received),
		zap.Int("duplicates", snap.Duplicates),
		zap.Int("updates", snap.Updates),
		zap.Int("new_contacts", snap.NewContacts),
		zap.Int("new_leads", snap.NewLeads),
		zap.Int("failed", snap.Failed),
	)
}
