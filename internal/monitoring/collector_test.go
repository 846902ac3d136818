package monitoring

import (
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/community-sync/internal/pipeline"
)

func TestCollector_Counters(t *testing.T) {
	t.Parallel()

	c := NewCollector()

	c.Record(&pipeline.Outcome{Resolution: &pipeline.Resolution{Kind: pipeline.ResolvedExisting}})
	c.Record(&pipeline.Outcome{Resolution: &pipeline.Resolution{Kind: pipeline.ResolvedNewContact}})
	c.Record(&pipeline.Outcome{Resolution: &pipeline.Resolution{Kind: pipeline.ResolvedNewLead}})
	c.Record(&pipeline.Outcome{Err: eris.New("boom")})
	c.RecordDuplicate()

	snap := c.Collect()
	assert.Equal(t, 5, snap.Received)
	assert.Equal(t, 1, snap.Duplicates)
	assert.Equal(t, 1, snap.Updates)
	assert.Equal(t, 1, snap.NewContacts)
	assert.Equal(t, 1, snap.NewLeads)
	assert.Equal(t, 1, snap.Failed)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestCollector_ConcurrentRecord(t *testing.T) {
	t.Parallel()

	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(&pipeline.Outcome{Resolution: &pipeline.Resolution{Kind: pipeline.ResolvedNewLead}})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Collect().NewLeads)
}
