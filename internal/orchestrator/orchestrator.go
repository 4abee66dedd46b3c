// Package orchestrator owns the mutable controller state and the
// single-flight evolution run lifecycle: ingestion, rollback monitoring,
// trigger scheduling, optimizer invocation, promotion gating, and the
// bounded event/run logs.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/clawevolve/controller/internal/config"
	"github.com/openclaw/clawevolve/controller/internal/eval"
	"github.com/openclaw/clawevolve/controller/internal/gate"
	"github.com/openclaw/clawevolve/controller/internal/optimizer"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/rollback"
	"github.com/openclaw/clawevolve/controller/internal/runlog"
	"github.com/openclaw/clawevolve/controller/internal/split"
	"github.com/openclaw/clawevolve/controller/internal/state"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
	"github.com/openclaw/clawevolve/controller/internal/trigger"
)

// ReasonInsufficientData marks a run that was skipped before reaching the
// optimizer because the training partition was too small.
const ReasonInsufficientData = "insufficient_data"

// #region controller-struct

// Controller is the single logical decision-maker for one deployment.
// All state reads and mutations happen under mu; the only suspension
// point is the optimizer call, which runs outside the lock against
// copied inputs.
type Controller struct {
	mu sync.Mutex

	cfg       config.Config
	window    *telemetry.Window
	evaluator *eval.Evaluator
	gate      *gate.Gate
	monitor   *rollback.Monitor
	opt       optimizer.Optimizer

	champion         *policy.Genome
	previousChampion *policy.Genome
	baselineEval     *eval.Evaluation
	lastEvolutionAt  time.Time
	// Monotone ingest counter and its value at the last completed run;
	// the trigger interval is their difference so a saturated window
	// cannot starve the schedule.
	ingested         int
	lastEvolutionCnt int

	inflight *runHandle
	events   *runlog.Ring[runlog.Event]
	runs     *runlog.Ring[runlog.RunSummary]

	sinks []EventSink
	now   func() time.Time
}

// #endregion controller-struct

// #region constructor

// Option customizes a Controller.
type Option func(*Controller)

// WithSink registers an event sink.
func WithSink(s EventSink) Option {
	return func(c *Controller) { c.sinks = append(c.sinks, s) }
}

// WithClock injects a clock. Used for testing.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller with an empty window and no champion.
func New(cfg config.Config, opt optimizer.Optimizer, opts ...Option) *Controller {
	cfg = cfg.Clamp()
	evaluator := eval.NewEvaluator(cfg.Weights)
	c := &Controller{
		cfg:       cfg,
		window:    telemetry.NewWindow(cfg.WindowSize),
		evaluator: evaluator,
		gate:      gate.NewGate(cfg.Gate),
		monitor:   rollback.NewMonitor(cfg.Rollback, evaluator),
		opt:       opt,
		events:    runlog.NewRing[runlog.Event](cfg.EventLogCap),
		runs:      runlog.NewRing[runlog.RunSummary](cfg.RunHistoryCap),
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// #endregion constructor

// #region ingest

// Ingest appends a trajectory to the window, runs the rollback monitor,
// then the trigger evaluator. When the trigger reports ready an online
// run starts in the background. The returned status reflects state after
// this ingestion.
func (c *Controller) Ingest(t telemetry.Trajectory) trigger.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.window.Ingest(t)
	c.ingested++

	c.checkRollbackLocked()

	st := c.triggerStatusLocked()
	if st.Ready {
		h := c.startRunLocked(runlog.ModeOnline, c.cfg.Generations, c.cfg.PopulationSize)
		go c.executeRun(context.Background(), h)
		// Re-derive so the caller sees the in-flight marker it caused.
		st = c.triggerStatusLocked()
	}
	return st
}

// #endregion ingest

// #region rollback

// checkRollbackLocked runs one monitor cycle and reverts the champion
// when live performance regressed past the configured thresholds.
func (c *Controller) checkRollbackLocked() {
	if c.champion == nil || c.previousChampion == nil || c.baselineEval == nil {
		return
	}
	recent := c.window.Tail(c.cfg.Rollback.MonitorWindow)
	d := c.monitor.Check(recent, *c.champion, *c.baselineEval)
	if d.Skipped || !d.Revert {
		return
	}

	demoted := *c.champion
	restored := *c.previousChampion
	c.champion = &restored
	c.previousChampion = nil
	c.baselineEval = nil

	log.Printf("[ROLLBACK] reverting champion %s -> %s (aggregateDrop=%.4f safetyDrop=%.4f samples=%d)",
		demoted.ID, restored.ID, d.AggregateDrop, d.SafetyDrop, d.SampleCount)

	c.emitLocked(runlog.Event{
		Timestamp: c.now(),
		Type:      runlog.EventRollback,
		Payload: map[string]any{
			"fromChampionId": demoted.ID,
			"toChampionId":   restored.ID,
			"aggregateDrop":  d.AggregateDrop,
			"safetyDrop":     d.SafetyDrop,
			"sampleCount":    d.SampleCount,
			"championOnly":   d.ChampionOnly,
		},
	})
}

// #endregion rollback

// #region trigger

func (c *Controller) triggerStatusLocked() trigger.Status {
	return trigger.Evaluate(trigger.Input{
		Enabled:         c.cfg.OnlineEnabled,
		InFlight:        c.inflight != nil,
		TrajectoryCount: c.window.Len(),
		MinTrajectories: c.cfg.MinTrajectories,
		SinceLastRun:    c.ingested - c.lastEvolutionCnt,
		EvolveEvery:     c.cfg.EvolveEvery,
		LastEvolutionAt: c.lastEvolutionAt,
		Cooldown:        c.cfg.Cooldown,
		Now:             c.now(),
	})
}

// TriggerStatus recomputes readiness without mutating anything.
func (c *Controller) TriggerStatus() trigger.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggerStatusLocked()
}

// #endregion trigger

// #region manual-evolve

// Evolve runs a manual evolution and blocks until the run completes. If
// a run is already in flight the call joins it: no second optimizer
// invocation happens and the joiner receives the same RunSummary.
func (c *Controller) Evolve(ctx context.Context, ov EvolveOverrides) (runlog.RunSummary, error) {
	c.mu.Lock()
	h := c.inflight
	if h == nil {
		gens := ov.Generations
		if gens <= 0 {
			gens = c.cfg.Generations
		}
		pop := ov.PopulationSize
		if pop <= 0 {
			pop = c.cfg.PopulationSize
		}
		h = c.startRunLocked(runlog.ModeManual, gens, pop)
		c.mu.Unlock()
		c.executeRun(ctx, h)
	} else {
		log.Printf("[EVO] manual request joins in-flight run %s", h.runID)
		c.mu.Unlock()
	}

	select {
	case <-h.done:
		return h.summary, h.err
	case <-ctx.Done():
		return runlog.RunSummary{}, ctx.Err()
	}
}

// #endregion manual-evolve

// #region run-lifecycle

// startRunLocked claims the in-flight slot and snapshots run inputs.
// Caller holds mu and has verified no run is in flight.
func (c *Controller) startRunLocked(mode string, generations, population int) *runHandle {
	h := &runHandle{
		runID:       fmt.Sprintf("run_%d_%s", c.now().UnixMilli(), uuid.NewString()[:8]),
		mode:        mode,
		generations: generations,
		population:  population,
		done:        make(chan struct{}),
	}
	c.inflight = h

	log.Printf("[EVO] %s run %s starting (window=%d gens=%d pop=%d)",
		mode, h.runID, c.window.Len(), generations, population)
	c.emitLocked(runlog.Event{
		Timestamp: c.now(),
		Type:      runlog.EventEvolutionStart,
		RunID:     h.runID,
		Payload: map[string]any{
			"mode":           mode,
			"windowLen":      c.window.Len(),
			"generations":    generations,
			"populationSize": population,
		},
	})

	h.summary = runlog.RunSummary{
		RunID:     h.runID,
		Mode:      mode,
		StartedAt: c.now(),
	}
	return h
}

// executeRun drives one run to completion. The optimizer call happens
// without the lock; state mutation and logging happen under it. The
// in-flight slot is released in all paths.
func (c *Controller) executeRun(ctx context.Context, h *runHandle) {
	c.mu.Lock()
	window := c.window.All()
	var seed policy.Genome
	if c.champion != nil {
		seed = *c.champion
	} else {
		seed = policy.Seed(c.cfg.Seed)
	}
	weights := c.evaluator.Weights()
	splitCfg := c.cfg.Split
	algo := optimizer.Algorithm{
		CandidateSelectionStrategy: c.cfg.CandidateSelection,
		ReflectionMinibatchSize:    c.cfg.ReflectionMinibatchSize,
	}
	c.mu.Unlock()

	parts := split.Temporal(window, splitCfg)
	if len(parts.Train) < 2 {
		// Insufficient signal: skip quietly, no optimizer call, no error.
		h.summary.TrainSize = len(parts.Train)
		h.summary.HoldoutSize = len(parts.Holdout)
		h.summary.Reason = ReasonInsufficientData
		h.summary.FinishedAt = c.now()
		log.Printf("[EVO] run %s skipped: train=%d", h.runID, len(parts.Train))
		c.finishRun(h, false)
		return
	}

	algo.OuterHoldoutApplied = len(parts.Holdout) > 0
	result, err := c.opt.Evolve(ctx, optimizer.EvolveRequest{
		SeedGenome:       seed,
		Trajectories:     parts.Train,
		Generations:      h.generations,
		PopulationSize:   h.population,
		ObjectiveWeights: weights,
		Algorithm:        algo,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	h.summary.TrainSize = len(parts.Train)
	h.summary.HoldoutSize = len(parts.Holdout)
	h.summary.FinishedAt = c.now()
	h.summary.DurationMs = h.summary.FinishedAt.Sub(h.summary.StartedAt).Milliseconds()

	if err != nil {
		h.err = fmt.Errorf("optimizer: %w", err)
		h.summary.Error = h.err.Error()
		h.summary.Reason = "optimizer_error"
		log.Printf("[EVO] run %s failed: %v", h.runID, err)
		c.emitLocked(runlog.Event{
			Timestamp: c.now(),
			Type:      runlog.EventError,
			RunID:     h.runID,
			Payload:   map[string]any{"error": err.Error()},
		})
		c.completeRunLocked(h, true)
		return
	}

	candidate := policy.Clamp(result.Champion)

	// Validate on holdout when available, else on the training set, with
	// the same evaluation function for candidate and incumbent.
	validation := parts.Holdout
	if len(validation) == 0 {
		validation = parts.Train
	}
	candidateEval := c.evaluator.Evaluate(candidate, validation)
	var incumbentEval *eval.Evaluation
	if c.champion != nil {
		e := c.evaluator.Evaluate(*c.champion, validation)
		incumbentEval = &e
	}

	decision := c.gate.Evaluate(candidateEval, incumbentEval)
	h.summary.Promoted = decision.Promote
	h.summary.Reason = decision.Reason
	h.summary.AggregateLift = decision.AggregateLift
	h.summary.SafetyDrop = decision.SafetyDrop
	h.summary.SuccessDrop = decision.SuccessDrop

	if decision.Promote {
		if c.champion != nil {
			prev := *c.champion
			c.previousChampion = &prev
			h.summary.PolicyDiff = policy.Diff(prev, candidate)
		}
		c.champion = &candidate
		baseline := candidateEval.Clone()
		if c.previousChampion != nil {
			c.baselineEval = &baseline
		}
		h.summary.ChampionID = candidate.ID

		log.Printf("[EVO] run %s promoted %s (lift=%.4f safety=%.4f)",
			h.runID, candidate.ID, decision.AggregateLift, candidateEval.Safety())
		c.emitLocked(runlog.Event{
			Timestamp: c.now(),
			Type:      runlog.EventPromotion,
			RunID:     h.runID,
			Payload: map[string]any{
				"championId":    candidate.ID,
				"reason":        decision.Reason,
				"aggregateLift": decision.AggregateLift,
				"aggregate":     candidateEval.AggregateScore,
				"safety":        candidateEval.Safety(),
			},
		})
	} else {
		if c.champion != nil {
			h.summary.ChampionID = c.champion.ID
		}
		log.Printf("[EVO] run %s rejected candidate %s (%s lift=%.4f safetyDrop=%.4f)",
			h.runID, candidate.ID, decision.Reason, decision.AggregateLift, decision.SafetyDrop)
		c.emitLocked(runlog.Event{
			Timestamp: c.now(),
			Type:      runlog.EventRejection,
			RunID:     h.runID,
			Payload: map[string]any{
				"candidateId":   candidate.ID,
				"reason":        decision.Reason,
				"aggregateLift": decision.AggregateLift,
				"safetyDrop":    decision.SafetyDrop,
				"successDrop":   decision.SuccessDrop,
			},
		})
	}

	c.completeRunLocked(h, true)
}

// finishRun releases the slot for runs that never reached the optimizer.
func (c *Controller) finishRun(h *runHandle, record bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeRunLocked(h, record)
}

// completeRunLocked clears the in-flight marker, records bookkeeping, and
// wakes joiners. A handle orphaned by a state restore still wakes its
// joiners but must not touch restored state. record is false for runs
// that never produced a decision, which leave the schedule untouched.
func (c *Controller) completeRunLocked(h *runHandle, record bool) {
	if c.inflight == h {
		c.inflight = nil
		if record {
			c.lastEvolutionAt = c.now()
			c.lastEvolutionCnt = c.ingested
			c.runs.Append(h.summary)
			c.emitLocked(runlog.Event{
				Timestamp: c.now(),
				Type:      runlog.EventEvolutionComplete,
				RunID:     h.runID,
				Payload: map[string]any{
					"promoted": h.summary.Promoted,
					"reason":   h.summary.Reason,
					"mode":     h.summary.Mode,
				},
			})
		}
	}
	close(h.done)
}

// #endregion run-lifecycle

// #region events

// emitLocked appends to the bounded event ring and fans out to sinks.
func (c *Controller) emitLocked(ev runlog.Event) {
	c.events.Append(ev)
	for _, s := range c.sinks {
		s.Emit(ev)
	}
}

// #endregion events

// #region status

// Champion returns a copy of the current champion, or false when none.
func (c *Controller) Champion() (policy.Genome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.champion == nil {
		return policy.Genome{}, false
	}
	return *c.champion, true
}

// Status assembles the read-only view without mutating anything.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		HasSafetyNet:    c.previousChampion != nil,
		WindowLen:       c.window.Len(),
		WindowSize:      c.window.Size(),
		Trigger:         c.triggerStatusLocked(),
		RecentMetrics:   windowMetrics(c.window.Tail(c.cfg.Rollback.MonitorWindow)),
		RecentEvents:    c.events.Tail(20),
		LastEvolutionAt: c.lastEvolutionAt,
		InFlight:        c.inflight != nil,
	}
	if c.champion != nil {
		st.ChampionID = c.champion.ID
	}
	if last, ok := c.runs.Last(); ok {
		st.LastRun = &last
	}
	if c.inflight != nil {
		st.InFlightRunID = c.inflight.runID
	}
	return st
}

// RunHistory returns the bounded run log, oldest first.
func (c *Controller) RunHistory() []runlog.RunSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs.All()
}

// Events returns the bounded event log, oldest first.
func (c *Controller) Events() []runlog.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events.All()
}

func windowMetrics(recent []telemetry.Trajectory) WindowMetrics {
	m := WindowMetrics{SampleCount: len(recent)}
	if len(recent) == 0 {
		return m
	}
	var successes int
	for _, t := range recent {
		if t.Success {
			successes++
		}
		m.MeanFeedback += t.UserFeedback
		m.MeanLatencyMs += t.LatencyMs
		m.SafetyIncidents += t.SafetyIncidents
	}
	n := float64(len(recent))
	m.SuccessRate = float64(successes) / n
	m.MeanFeedback /= n
	m.MeanLatencyMs /= n
	return m
}

// #endregion status

// #region snapshot

// ExportState produces an independent snapshot of all mutable state.
func (c *Controller) ExportState() state.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := state.Snapshot{
		SchemaVersion:    state.SchemaVersion,
		CapturedAt:       c.now(),
		Trajectories:     c.window.All(),
		LastEvolutionAt:  c.lastEvolutionAt,
		LastEvolutionLen: c.lastEvolutionCnt,
		Events:           c.events.All(),
		RunHistory:       c.runs.All(),
	}
	if c.champion != nil {
		g := *c.champion
		snap.Champion = &g
	}
	if c.previousChampion != nil {
		g := *c.previousChampion
		snap.PreviousChampion = &g
	}
	if c.baselineEval != nil {
		e := c.baselineEval.Clone()
		snap.BaselineEval = &e
	}
	return snap
}

// RestoreState replaces all mutable state from a snapshot. Bounds are
// re-applied, defective fields default, and the in-flight marker is
// always cleared: a restored process starts idle.
func (c *Controller) RestoreState(snap state.Snapshot) {
	snap = state.Sanitize(snap, state.Bounds{
		WindowSize:    c.cfg.WindowSize,
		EventLogCap:   c.cfg.EventLogCap,
		RunHistoryCap: c.cfg.RunHistoryCap,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	c.window.Replace(snap.Trajectories)
	c.champion = snap.Champion
	c.previousChampion = snap.PreviousChampion
	c.baselineEval = snap.BaselineEval
	c.lastEvolutionAt = snap.LastEvolutionAt
	c.ingested = c.window.Len()
	c.lastEvolutionCnt = snap.LastEvolutionLen
	if c.lastEvolutionCnt > c.ingested {
		c.lastEvolutionCnt = c.ingested
	}
	c.events.Replace(snap.Events)
	c.runs.Replace(snap.RunHistory)
	// Any run that was in flight before the restore is orphaned: its
	// completion wakes joiners but cannot touch the restored state.
	c.inflight = nil

	championID := ""
	if c.champion != nil {
		championID = c.champion.ID
	}
	log.Printf("[EVO] state restored (window=%d champion=%q events=%d runs=%d)",
		c.window.Len(), championID, c.events.Len(), c.runs.Len())
}

// #endregion snapshot
