package steps

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tranvictor/hsocial/executor"
	"github.com/tranvictor/hsocial/logging"
	"github.com/tranvictor/hsocial/txerror"
)

const DefaultSettleDelay = 2 * time.Second

var (
	ErrUnknownStep      = errors.New("unknown step")
	ErrStepNotStartable = errors.New("step cannot be started")
	// ErrReset is returned by a Start whose run was overtaken by Reset.
	ErrReset = errors.New("runner was reset while the step was running")
)

// StepStatus is the observable state of one step.
type StepStatus struct {
	Status   Status
	Disabled bool
	Result   *executor.Result
	Err      *txerror.ClassifiedError
}

// StepError reports the step that stopped a flow.
type StepError struct {
	Step string
	Err  *txerror.ClassifiedError
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %s", e.Step, e.Err.Message)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Observer func(name string, status StepStatus)

// Runner drives a Plan one step at a time. A step is enabled only once the
// step before it succeeded. Auto-advance, when on, starts the next enabled
// step a settle delay after each success and is switched off by the first
// failure.
type Runner struct {
	mu          sync.Mutex
	plan        Plan
	index       map[string]int
	statuses    []StepStatus
	autoAdvance bool
	latched     bool
	generation  uint64
	pending     *time.Timer
	changed     chan struct{}
	runID       string

	settleDelay time.Duration
	ctx         context.Context
	logger      *zap.Logger
	observer    Observer
}

type Option func(*Runner)

// WithSettleDelay sets the pause between a success and the next
// auto-advanced step, giving the mirror node time to index the write.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.settleDelay = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = logging.OrNop(l) }
}

// WithObserver registers a callback fired after every status change.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithContext sets the context that auto-advanced steps run with.
func WithContext(ctx context.Context) Option {
	return func(r *Runner) { r.ctx = ctx }
}

func NewRunner(plan Plan, opts ...Option) *Runner {
	r := &Runner{
		plan:        plan,
		index:       make(map[string]int, len(plan)),
		settleDelay: DefaultSettleDelay,
		ctx:         context.Background(),
		logger:      zap.NewNop(),
		changed:     make(chan struct{}),
	}
	for i, s := range plan {
		r.index[s.Name] = i
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetLocked()
	return r
}

func (r *Runner) resetLocked() {
	r.statuses = make([]StepStatus, len(r.plan))
	for i := range r.statuses {
		r.statuses[i] = StepStatus{Status: Idle, Disabled: i > 0}
	}
	r.autoAdvance = false
	r.latched = false
	r.generation++
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.runID = uuid.NewString()
	r.notifyLocked()
}

// notifyLocked wakes every Wait.
func (r *Runner) notifyLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}

func (r *Runner) Order() []string {
	return r.plan.Names()
}

// Statuses returns a snapshot keyed by step name.
func (r *Runner) Statuses() map[string]StepStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]StepStatus, len(r.statuses))
	for i, st := range r.statuses {
		out[r.plan[i].Name] = st
	}
	return out
}

func (r *Runner) Status(name string) (StepStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[name]
	if !ok {
		return StepStatus{}, false
	}
	return r.statuses[i], true
}

func (r *Runner) AutoAdvance() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.autoAdvance
}

// AutoAdvanceLatched reports whether a failure has switched auto-advance
// off. Only Reset or an explicit ToggleAutoAdvance(true) clears it.
func (r *Runner) AutoAdvanceLatched() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latched
}

// Done reports whether every step succeeded.
func (r *Runner) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doneLocked()
}

func (r *Runner) doneLocked() bool {
	for _, st := range r.statuses {
		if st.Status != Success {
			return false
		}
	}
	return true
}

func (r *Runner) failureLocked() *StepError {
	for i, st := range r.statuses {
		if st.Status == Error {
			return &StepError{Step: r.plan[i].Name, Err: st.Err}
		}
	}
	return nil
}

// Start runs the named step and blocks until it finishes. The step must be
// enabled and idle, or in error for a retry. A failed step is returned as a
// *StepError.
func (r *Runner) Start(ctx context.Context, name string) error {
	r.mu.Lock()
	run, err := r.beginLocked(name)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.complete(ctx, run)
}

type stepRun struct {
	i    int
	name string
	gen  uint64
	log  *zap.Logger
}

func (r *Runner) beginLocked(name string) (stepRun, error) {
	i, ok := r.index[name]
	if !ok {
		return stepRun{}, fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}
	st := r.statuses[i]
	if st.Disabled || (st.Status != Idle && st.Status != Error) {
		return stepRun{}, fmt.Errorf("%w: %s is %s (disabled=%t)", ErrStepNotStartable, name, st.Status, st.Disabled)
	}
	r.statuses[i] = StepStatus{Status: Loading}
	r.notifyLocked()
	return stepRun{
		i:    i,
		name: name,
		gen:  r.generation,
		log:  r.logger.With(zap.String("run", r.runID), zap.String("step", name)),
	}, nil
}

func (r *Runner) complete(ctx context.Context, run stepRun) error {
	name, i, log := run.name, run.i, run.log
	r.emit(name, StepStatus{Status: Loading})
	log.Debug("step started")
	res := r.perform(ctx, r.plan[i].Action)

	r.mu.Lock()
	if run.gen != r.generation {
		r.mu.Unlock()
		log.Debug("discarding step result after reset", zap.Bool("success", res.Success))
		return ErrReset
	}

	var next string
	var emits []func()
	if res.Success {
		done := StepStatus{Status: Success, Disabled: true, Result: &res}
		r.statuses[i] = done
		emits = append(emits, func() { r.emit(name, done) })
		if i+1 < len(r.statuses) {
			r.statuses[i+1].Disabled = false
			enabled := r.statuses[i+1]
			nextName := r.plan[i+1].Name
			emits = append(emits, func() { r.emit(nextName, enabled) })
			if r.autoAdvance && enabled.Status == Idle {
				next = nextName
			}
		}
	} else {
		failed := StepStatus{Status: Error, Result: &res, Err: res.Error}
		r.statuses[i] = failed
		emits = append(emits, func() { r.emit(name, failed) })
		if r.autoAdvance {
			r.autoAdvance = false
			r.latched = true
			if r.pending != nil {
				r.pending.Stop()
				r.pending = nil
			}
			log.Info("auto-advance paused after failure")
		}
	}
	if next != "" {
		r.scheduleLocked(next, r.settleDelay)
	}
	r.notifyLocked()
	r.mu.Unlock()

	for _, emit := range emits {
		emit()
	}
	if !res.Success {
		logging.Classified(log, "step failed", res.Error, zap.String("tx", res.TransactionID))
		return &StepError{Step: name, Err: res.Error}
	}
	log.Debug("step succeeded", zap.String("tx", res.TransactionID))
	return nil
}

func (r *Runner) perform(ctx context.Context, action Action) (res executor.Result) {
	if action == nil {
		return executor.Result{Success: true}
	}
	defer func() {
		if p := recover(); p != nil {
			res = executor.Result{Error: txerror.Classify(p)}
		}
	}()
	res = action(ctx)
	if !res.Success && res.Error == nil {
		res.Error = txerror.New(txerror.Unknown, "The step failed without an error.", nil)
	}
	return res
}

func (r *Runner) emit(name string, st StepStatus) {
	if r.observer != nil {
		r.observer(name, st)
	}
}

// scheduleLocked starts name after delay unless a Reset or a toggle off
// happens first.
func (r *Runner) scheduleLocked(name string, delay time.Duration) {
	if r.pending != nil {
		r.pending.Stop()
	}
	gen := r.generation
	r.pending = time.AfterFunc(delay, func() {
		r.mu.Lock()
		if gen != r.generation || !r.autoAdvance {
			r.mu.Unlock()
			return
		}
		r.pending = nil
		run, err := r.beginLocked(name)
		ctx := r.ctx
		r.mu.Unlock()
		if err != nil {
			r.logger.Debug("scheduled step not started", zap.String("step", name), zap.Error(err))
			return
		}
		_ = r.complete(ctx, run)
	})
}

// ToggleAutoAdvance switches auto-advance. Turning it on is an explicit
// resume: it clears a failure latch and starts the first enabled step that
// is idle right away. A failed step is restarted only when its result is
// safe to retry; a step whose transaction reached the ledger waits for an
// explicit Start.
func (r *Runner) ToggleAutoAdvance(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !on {
		r.autoAdvance = false
		if r.pending != nil {
			r.pending.Stop()
			r.pending = nil
		}
		r.notifyLocked()
		return
	}
	r.autoAdvance = true
	r.latched = false
	for i, st := range r.statuses {
		if st.Disabled || (st.Status != Idle && st.Status != Error) {
			continue
		}
		if st.Status == Error && !retryable(st) {
			r.logger.Info("failed step needs an explicit start",
				zap.String("step", r.plan[i].Name),
				zap.String("tx", st.Result.TransactionID),
			)
			break
		}
		r.scheduleLocked(r.plan[i].Name, 0)
		break
	}
	r.notifyLocked()
}

// retryable reports whether a failed step can be restarted without
// risking a second ledger write.
func retryable(st StepStatus) bool {
	return st.Result == nil || st.Result.SafeToRetry()
}

// Reset returns every step to its initial state, turns auto-advance off and
// drops pending scheduled starts. Steps already running finish but their
// results are discarded. Completed ledger writes are not undone.
func (r *Runner) Reset() {
	r.mu.Lock()
	r.resetLocked()
	statuses := append([]StepStatus(nil), r.statuses...)
	r.mu.Unlock()
	for i, st := range statuses {
		r.emit(r.plan[i].Name, st)
	}
}

// Wait blocks until every step succeeded, a step failed or ctx ends.
func (r *Runner) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		if r.doneLocked() {
			r.mu.Unlock()
			return nil
		}
		if serr := r.failureLocked(); serr != nil && r.pending == nil {
			r.mu.Unlock()
			return serr
		}
		ch := r.changed
		r.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Run turns auto-advance on and waits for the flow to finish or stop.
func (r *Runner) Run(ctx context.Context) error {
	r.ToggleAutoAdvance(true)
	return r.Wait(ctx)
}

// Retry starts the failed step again whatever its result said, then keeps
// auto-advancing through the rest of the plan. It is the explicit decision
// a step whose transaction reached the ledger needs. Without a failed step
// it behaves like Run.
func (r *Runner) Retry(ctx context.Context) error {
	r.mu.Lock()
	serr := r.failureLocked()
	if serr == nil {
		r.mu.Unlock()
		return r.Run(ctx)
	}
	r.autoAdvance = true
	r.latched = false
	run, err := r.beginLocked(serr.Step)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	if err := r.complete(ctx, run); err != nil {
		return err
	}
	return r.Wait(ctx)
}
