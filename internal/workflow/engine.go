package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"asset-report/internal/config"
	"asset-report/internal/models"
)

// ChatRequest is one synchronous completion call
type ChatRequest struct {
	Purpose     string // Payload schema the answer must follow
	APIKey      string
	Model       string
	System      string
	User        string
	Temperature float64
}

// Provider is an LLM chat completion backend. Implementations wrap
// ErrProviderTransient when they gave up on a timeout or rate limit.
type Provider interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ReportSink persists run progress and the terminal record
type ReportSink interface {
	// Checkpoint writes the trace and metadata of a run that is still generating
	Checkpoint(ctx context.Context, report *models.Report) error
	// Complete atomically writes the finished report
	Complete(ctx context.Context, report *models.Report) error
	// Fail marks the report failed, keeping the trace accumulated so far
	Fail(ctx context.Context, report *models.Report) error
}

// StageOutcome is what every stage function hands back to the engine.
// Err is set when the stage failed or degraded; a fatal kind routes the
// run to Fail.
type StageOutcome struct {
	Status models.TraceStatus
	Detail string
	Err    *StageError
}

func completed(format string, args ...interface{}) StageOutcome {
	return StageOutcome{Status: models.TraceCompleted, Detail: fmt.Sprintf(format, args...)}
}

func skipped(err *StageError, format string, args ...interface{}) StageOutcome {
	return StageOutcome{Status: models.TraceSkipped, Detail: fmt.Sprintf(format, args...), Err: err}
}

func failed(err *StageError) StageOutcome {
	return StageOutcome{Status: models.TraceFailed, Detail: err.Error(), Err: err}
}

type stageFunc func(ctx context.Context, st *State) StageOutcome

// Engine runs the report pipeline. It holds no per-run state, so one
// Engine serves every worker.
type Engine struct {
	store       AssetStore
	sink        ReportSink
	provider    Provider
	cfg         config.WorkflowConfig
	evaluator   *Evaluator
	temperature float64
	now         func() time.Time
}

// Option customizes an Engine
type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTemperature sets the base decoding temperature for provider calls
func WithTemperature(t float64) Option {
	return func(e *Engine) { e.temperature = t }
}

// NewEngine builds the pipeline. provider may be nil, in which case every
// run uses the rule-based fallbacks.
func NewEngine(store AssetStore, sink ReportSink, provider Provider, cfg config.WorkflowConfig, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("report sink is required")
	}
	if err := config.ValidateWorkflow(cfg); err != nil {
		return nil, fmt.Errorf("invalid workflow config: %w", err)
	}

	e := &Engine{
		store:       store,
		sink:        sink,
		provider:    provider,
		cfg:         cfg,
		evaluator:   NewEvaluator(cfg),
		temperature: 0.3,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the workflow settings the engine runs with
func (e *Engine) Config() config.WorkflowConfig {
	return e.cfg
}

// Run drives one report from Init to Save or Fail and returns the terminal
// state. The error is non-nil only when the terminal record itself could not
// be written; every other failure is reported through the state.
func (e *Engine) Run(ctx context.Context, task models.TaskContext) (*State, error) {
	st := NewState(task, e.now())
	e.record(ctx, st, StageInit, completed("%s report for user %s over %s", task.Kind, task.UserID, task.Window))

	steps := map[Stage]stageFunc{
		StageCollectFixed:   e.collectFixed,
		StageCollectVirtual: e.collectVirtual,
		StageAnalyze:        e.analyze,
		StageCompare:        e.compare,
		StageConclude:       e.conclude,
	}
	for _, stage := range linearStages {
		out := e.guard(ctx, st, stage, steps[stage])
		e.record(ctx, st, stage, out)
		if out.Err != nil && out.Err.Kind.Fatal() {
			return e.fail(ctx, st, out.Err)
		}
	}

	for {
		out := e.guard(ctx, st, StageGenerate, e.generate)
		e.record(ctx, st, StageGenerate, out)
		if out.Err != nil && out.Err.Kind.Fatal() {
			return e.fail(ctx, st, out.Err)
		}

		score := e.evaluator.Score(st.Content)
		st.Quality = &score

		switch verdict := Decide(score.Total, e.cfg.PassThreshold, st.RetryCount, e.cfg.MaxRetries); verdict {
		case VerdictPass:
			e.record(ctx, st, StageEvaluate, completed("quality %.2f passed threshold %.2f", score.Total, e.cfg.PassThreshold))
			return e.save(ctx, st)
		case VerdictRetry:
			st.RetryCount++
			e.record(ctx, st, StageRetry, completed("quality %.2f below %.2f, attempt %d/%d",
				score.Total, e.cfg.PassThreshold, st.RetryCount, e.cfg.MaxRetries))
		case VerdictFail:
			err := newStageError(QualityBelowThreshold, StageEvaluate,
				fmt.Errorf("quality %.2f below threshold %.2f after %d retries", score.Total, e.cfg.PassThreshold, st.RetryCount))
			e.record(ctx, st, StageEvaluate, failed(err))
			return e.fail(ctx, st, err)
		default:
			panic(fmt.Sprintf("unhandled verdict %v", verdict))
		}
	}
}

// guard runs one stage and turns a panic inside it into a fatal outcome,
// so the run still ends in Fail
func (e *Engine) guard(ctx context.Context, st *State, stage Stage, fn stageFunc) (out StageOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Report %s stage %s panicked: %v", st.Task.ReportID, stage, r)
			out = failed(newStageError(StagePanic, stage, fmt.Errorf("panic: %v", r)))
		}
	}()
	return fn(ctx, st)
}

// record appends the trace entry for a stage execution and checkpoints it.
// Checkpoint failures are logged; the run carries on.
func (e *Engine) record(ctx context.Context, st *State, stage Stage, out StageOutcome) {
	st.appendTrace(stage, out.Status, out.Detail, e.now())
	if out.Err != nil && !out.Err.Kind.Fatal() && !errors.Is(out.Err, ErrMissingCredential) {
		log.Printf("WARNING: report %s: %s degraded: %v", st.Task.ReportID, stage, out.Err)
	}

	sctx, cancel := e.storeContext(ctx)
	defer cancel()
	if err := e.sink.Checkpoint(sctx, st.Report()); err != nil {
		log.Printf("WARNING: Failed to checkpoint report %s at %s: %v", st.Task.ReportID, stage, err)
	}
}

// save writes the completed report. On failure the save entry is marked
// failed and a best-effort Fail write follows.
func (e *Engine) save(ctx context.Context, st *State) (*State, error) {
	st.EndTime = e.now()
	st.appendTrace(StageSave, models.TraceCompleted, fmt.Sprintf("report completed with quality %.2f", st.Quality.Total), st.EndTime)

	sctx, cancel := e.storeContext(ctx)
	defer cancel()
	err := e.sink.Complete(sctx, st.Report())
	if err == nil {
		return st, nil
	}

	serr := newStageError(PersistenceError, StageSave, err)
	st.Err = serr
	last := &st.Trace[len(st.Trace)-1]
	last.Status = models.TraceFailed
	last.Detail = serr.Error()

	fctx, fcancel := e.storeContext(ctx)
	defer fcancel()
	if ferr := e.sink.Fail(fctx, st.Report()); ferr != nil {
		log.Printf("ERROR: Failed to mark report %s failed after save error: %v", st.Task.ReportID, ferr)
	}
	return st, serr
}

// fail terminates the run, preserving the trace accumulated so far
func (e *Engine) fail(ctx context.Context, st *State, cause *StageError) (*State, error) {
	st.Err = cause
	st.EndTime = e.now()
	st.appendTrace(StageFail, models.TraceFailed, cause.Error(), st.EndTime)

	sctx, cancel := e.storeContext(ctx)
	defer cancel()
	if err := e.sink.Fail(sctx, st.Report()); err != nil {
		log.Printf("ERROR: Failed to persist failure of report %s: %v", st.Task.ReportID, err)
		return st, newStageError(PersistenceError, StageFail, err)
	}
	return st, nil
}

func (e *Engine) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.StoreTimeout)
}

func (e *Engine) collectFixed(ctx context.Context, st *State) StageOutcome {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	snap, err := CollectFixed(sctx, e.store, st.Task.UserID, st.Task.Window)
	if err != nil {
		return failed(newStageError(CollectionError, StageCollectFixed, err))
	}
	st.Fixed = snap
	return completed("%d fixed assets, health %.2f", snap.TotalCount, snap.HealthScore)
}

func (e *Engine) collectVirtual(ctx context.Context, st *State) StageOutcome {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	snap, err := CollectVirtual(sctx, e.store, st.Task.UserID, st.Task.Window)
	if err != nil {
		return failed(newStageError(CollectionError, StageCollectVirtual, err))
	}
	st.Virtual = snap
	return completed("%d virtual assets, efficiency %.2f", snap.TotalCount, snap.EfficiencyScore)
}

// askJSON calls the provider once and decodes a schema-checked payload into
// out. The returned error is always one of the two provider kinds.
func (e *Engine) askJSON(ctx context.Context, st *State, stage Stage, req ChatRequest, out interface{}) *StageError {
	if e.provider == nil || !st.Task.HasCredential() {
		return newStageError(ProviderTransientError, stage, ErrMissingCredential)
	}
	req.APIKey = st.Task.Credential
	req.Model = st.Task.Model

	raw, err := e.provider.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, ErrProviderTransient) || errors.Is(err, context.DeadlineExceeded) {
			return newStageError(ProviderTransientError, stage, err)
		}
		return newStageError(ProviderResponseError, stage, err)
	}
	if err := decodePayload(raw, req.Purpose, out); err != nil {
		return newStageError(ProviderResponseError, stage, err)
	}
	return nil
}
