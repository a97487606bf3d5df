// Package dispatcher invokes plugin hooks through a bounded worker pool,
// enforcing a per-call timeout and a circuit breaker, and aggregates each
// plugin's individual decision into one answer for the pipeline.
//
// No plugin failure, panic, or timeout ever reaches the caller as an error:
// it is logged, counted against that plugin's circuit, and folded into the
// aggregate as if the plugin had abstained.
package dispatcher

import (
	"time"

	"github.com/watchgit/fwgp/internal/circuit"
	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/logger"
	"github.com/watchgit/fwgp/internal/plugin"
)

// DefaultWorkers is the bounded worker-pool size.
const DefaultWorkers = 8

// DefaultTimeout bounds every individual plugin call.
const DefaultTimeout = 2 * time.Second

// Dispatcher resolves configured plugin specs via a plugin.Host and calls
// their hooks through a fixed-size goroutine pool.
type Dispatcher struct {
	host     *plugin.Host
	circuits *circuit.Store
	specs    []string // stable, config order
	handlers map[string]plugin.Handler

	tasks   chan func()
	timeout time.Duration
}

// New resolves every spec in specs (in order) to a Handler via host and
// starts a pool of workers workers, each call bounded by timeout. A spec
// that fails to resolve (an unknown built-in, a missing or invalid
// manifest, a ".so" that won't load) is logged and skipped rather than
// aborting construction: one bad entry in the enabled-plugins list must
// never keep the daemon from starting with everything else that did load.
func New(host *plugin.Host, circuits *circuit.Store, specs []string, workers int, timeout time.Duration) (*Dispatcher, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := &Dispatcher{
		host:     host,
		circuits: circuits,
		handlers: map[string]plugin.Handler{},
		tasks:    make(chan func()),
		timeout:  timeout,
	}
	var loaded []string
	for _, spec := range specs {
		h, err := host.Resolve(spec)
		if err != nil {
			logger.Dispatcher().Warn().Str("plugin", spec).Err(err).Msg("skipping plugin that failed to load")
			continue
		}
		d.handlers[spec] = h
		loaded = append(loaded, spec)
	}
	d.specs = loaded
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d, nil
}

func (d *Dispatcher) worker() {
	for task := range d.tasks {
		task()
	}
}

// call runs fn for spec through the worker pool, subject to the circuit
// breaker and the call timeout. The timeout bounds both submission (handing
// fn to a free worker) and execution, so a pool with every worker still busy
// on a prior slow call returns control to the caller by the deadline instead
// of blocking forever on the send. ok is false if the plugin is disabled,
// the call never got a worker in time, it timed out, or it panicked; in
// every such case the failure is recorded against the plugin's circuit and
// logged, never returned as an error to the caller.
func (d *Dispatcher) call(spec string, fn func()) (ok bool) {
	if d.circuits.IsDisabled(spec) {
		return false
	}
	done := make(chan struct{})
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Dispatcher().Error().Str("plugin", spec).Interface("panic", r).Msg("plugin call panicked")
				d.circuits.RecordFailure(spec)
			}
			close(done)
		}()
		fn()
	}
	deadline := time.NewTimer(d.timeout)
	defer deadline.Stop()
	select {
	case d.tasks <- task:
	case <-deadline.C:
		logger.Dispatcher().Warn().Str("plugin", spec).Msg("plugin call timed out waiting for a free worker")
		d.circuits.RecordFailure(spec)
		return false
	}
	select {
	case <-done:
		return true
	case <-deadline.C:
		logger.Dispatcher().Warn().Str("plugin", spec).Msg("plugin call timed out")
		d.circuits.RecordFailure(spec)
		return false
	}
}

// OnFileDetected fans the event out to every enabled plugin; there is
// nothing to aggregate.
func (d *Dispatcher) OnFileDetected(evt events.FileChangeEvent) {
	for _, spec := range d.specs {
		spec := spec
		d.call(spec, func() { d.handlers[spec].OnFileDetected(evt) })
	}
}

// BeforeStage aggregates every plugin's vote: Allow is the AND of all
// plugins that responded (a single denial blocks staging), Reasons is the
// concatenation of every denying plugin's reasons, and Transforms merges
// each plugin's map with later plugins (in config order) overwriting
// earlier keys.
func (d *Dispatcher) BeforeStage(req events.StageRequest) events.StageDecision {
	agg := events.StageDecision{Allow: true, Transforms: map[string]any{}}
	for _, spec := range d.specs {
		spec := spec
		var dec events.StageDecision
		ok := d.call(spec, func() { dec = d.handlers[spec].BeforeStage(req) })
		if !ok {
			continue
		}
		if !dec.Allow {
			agg.Allow = false
			agg.Reasons = append(agg.Reasons, dec.Reasons...)
		}
		for k, v := range dec.Transforms {
			agg.Transforms[k] = v
		}
	}
	return agg
}

// AfterStage notifies every plugin; no aggregation.
func (d *Dispatcher) AfterStage(req events.StageRequest, decision events.StageDecision) {
	for _, spec := range d.specs {
		spec := spec
		d.call(spec, func() { d.handlers[spec].AfterStage(req, decision) })
	}
}

// BeforeCommit aggregates Allow by AND, MessageOverride by last-non-empty-
// wins (in config order), and Sign by OR (any plugin requesting a signed
// commit wins).
func (d *Dispatcher) BeforeCommit(req events.CommitRequest) events.CommitDecision {
	agg := events.CommitDecision{Allow: true}
	for _, spec := range d.specs {
		spec := spec
		var dec events.CommitDecision
		ok := d.call(spec, func() { dec = d.handlers[spec].BeforeCommit(req) })
		if !ok {
			continue
		}
		if !dec.Allow {
			agg.Allow = false
		}
		if dec.MessageOverride != "" {
			agg.MessageOverride = dec.MessageOverride
		}
		if dec.Sign {
			agg.Sign = true
		}
	}
	return agg
}

// AfterCommit notifies every plugin; no aggregation.
func (d *Dispatcher) AfterCommit(req events.CommitRequest, sha string) {
	for _, spec := range d.specs {
		spec := spec
		d.call(spec, func() { d.handlers[spec].AfterCommit(req, sha) })
	}
}

// BeforePush aggregates Allow by AND and Force by OR.
func (d *Dispatcher) BeforePush(req events.PushRequest) events.PushDecision {
	agg := events.PushDecision{Allow: true}
	for _, spec := range d.specs {
		spec := spec
		var dec events.PushDecision
		ok := d.call(spec, func() { dec = d.handlers[spec].BeforePush(req) })
		if !ok {
			continue
		}
		if !dec.Allow {
			agg.Allow = false
		}
		if dec.Force {
			agg.Force = true
		}
	}
	return agg
}

// AfterPush notifies every plugin; no aggregation.
func (d *Dispatcher) AfterPush(req events.PushRequest, pushed bool) {
	for _, spec := range d.specs {
		spec := spec
		d.call(spec, func() { d.handlers[spec].AfterPush(req, pushed) })
	}
}

// BeforePull aggregates Allow by AND and Strategy by last-non-empty-wins.
func (d *Dispatcher) BeforePull(req events.PullRequest) events.PullDecision {
	agg := events.PullDecision{Allow: true}
	for _, spec := range d.specs {
		spec := spec
		var dec events.PullDecision
		ok := d.call(spec, func() { dec = d.handlers[spec].BeforePull(req) })
		if !ok {
			continue
		}
		if !dec.Allow {
			agg.Allow = false
		}
		if dec.Strategy != "" {
			agg.Strategy = dec.Strategy
		}
	}
	return agg
}

// AfterPull notifies every plugin; no aggregation.
func (d *Dispatcher) AfterPull(result events.PullResult) {
	for _, spec := range d.specs {
		spec := spec
		d.call(spec, func() { d.handlers[spec].AfterPull(result) })
	}
}

// OnConflict notifies every plugin; no aggregation.
func (d *Dispatcher) OnConflict(info events.ConflictInfo) {
	for _, spec := range d.specs {
		spec := spec
		d.call(spec, func() { d.handlers[spec].OnConflict(info) })
	}
}
