package dispatcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchgit/fwgp/internal/circuit"
	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/plugin"
)

type denyPlugin struct {
	plugin.BasePlugin
	reason string
}

func (d *denyPlugin) BeforeStage(events.StageRequest) events.StageDecision {
	return events.StageDecision{Allow: false, Reasons: []string{d.reason}}
}

type allowPlugin struct {
	plugin.BasePlugin
}

func (allowPlugin) BeforeStage(events.StageRequest) events.StageDecision {
	return events.StageDecision{Allow: true}
}

type slowPlugin struct {
	plugin.BasePlugin
	delay time.Duration
}

func (s *slowPlugin) BeforeStage(events.StageRequest) events.StageDecision {
	time.Sleep(s.delay)
	return events.StageDecision{Allow: false, Reasons: []string{"should never be observed"}}
}

type panicPlugin struct {
	plugin.BasePlugin
}

func (panicPlugin) BeforeStage(events.StageRequest) events.StageDecision {
	panic("boom")
}

func newTestDispatcher(t *testing.T, specs []string) (*Dispatcher, *circuit.Store) {
	t.Helper()
	host, err := plugin.NewHost(t.TempDir())
	require.NoError(t, err)
	store := circuit.Open(t.TempDir())
	d, err := New(host, store, specs, 4, 50*time.Millisecond)
	require.NoError(t, err)
	return d, store
}

func TestBeforeStageAllowIsANDAcrossPlugins(t *testing.T) {
	plugin.Register("dispatchertest:Deny", func() plugin.Handler { return &denyPlugin{reason: "nope"} })
	plugin.Register("dispatchertest:Allow", func() plugin.Handler { return &allowPlugin{} })

	d, _ := newTestDispatcher(t, []string{"dispatchertest:Allow", "dispatchertest:Deny"})
	dec := d.BeforeStage(events.StageRequest{Paths: []string{"a.txt"}})

	assert.False(t, dec.Allow)
	assert.Contains(t, dec.Reasons, "nope")
}

func TestBeforeStageAllAllowWins(t *testing.T) {
	plugin.Register("dispatchertest:AllowOnly", func() plugin.Handler { return &allowPlugin{} })

	d, _ := newTestDispatcher(t, []string{"dispatchertest:AllowOnly"})
	dec := d.BeforeStage(events.StageRequest{Paths: []string{"a.txt"}})

	assert.True(t, dec.Allow)
	assert.Empty(t, dec.Reasons)
}

func TestTimeoutNeverPropagatesAndTripsCircuit(t *testing.T) {
	plugin.Register("dispatchertest:Slow", func() plugin.Handler { return &slowPlugin{delay: 500 * time.Millisecond} })

	d, store := newTestDispatcher(t, []string{"dispatchertest:Slow"})

	for i := 0; i < circuit.FailureThreshold; i++ {
		dec := d.BeforeStage(events.StageRequest{})
		assert.True(t, dec.Allow, "a timed-out plugin must never flip the aggregate to deny")
	}
	assert.True(t, store.IsDisabled("dispatchertest:Slow"))
}

func TestPanicIsContainedAndRecordedAsFailure(t *testing.T) {
	plugin.Register("dispatchertest:Panic", func() plugin.Handler { return &panicPlugin{} })

	d, store := newTestDispatcher(t, []string{"dispatchertest:Panic"})
	require.NotPanics(t, func() {
		d.BeforeStage(events.StageRequest{})
	})
	assert.Equal(t, 1, store.Get("dispatchertest:Panic").Failures)
}

func TestUnresolvableSpecIsSkippedNotFatal(t *testing.T) {
	plugin.Register("dispatchertest:AllowForSkipTest", func() plugin.Handler { return &allowPlugin{} })

	host, err := plugin.NewHost(t.TempDir())
	require.NoError(t, err)
	store := circuit.Open(t.TempDir())

	d, err := New(host, store, []string{
		"dispatchertest:AllowForSkipTest",
		"dispatchertest:DoesNotExist",
	}, 4, 50*time.Millisecond)
	require.NoError(t, err, "an unresolvable spec must never abort construction")

	assert.Equal(t, []string{"dispatchertest:AllowForSkipTest"}, d.specs)
	dec := d.BeforeStage(events.StageRequest{})
	assert.True(t, dec.Allow)
}
