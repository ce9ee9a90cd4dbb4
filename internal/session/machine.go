package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pavelanni/examdesk/internal/model"
	"github.com/pavelanni/examdesk/internal/scoring"
)

var (
	// ErrNotActive is returned for operations that need a different state.
	ErrNotActive = errors.New("session is not active")
	// ErrSubmitDeclined is returned when the user cancels the submit prompt.
	ErrSubmitDeclined = errors.New("submit declined")
	// ErrQuizIndex is returned for a quiz index outside the attempt.
	ErrQuizIndex = errors.New("quiz index out of range")
	// ErrEmptyOption is returned when toggling an empty option string.
	ErrEmptyOption = errors.New("option must not be empty")
	// ErrStopped is returned once Run has returned.
	ErrStopped = errors.New("session stopped")
)

// State is the session lifecycle state.
type State int32

const (
	StateLoading State = iota
	StateActive
	StateSubmitting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// TimerState is the countdown sub-state of an active session.
type TimerState int

const (
	TimerUnset TimerState = iota
	TimerRunning
	TimerExpired
)

// Notice is an event the view layer may want to show.
type Notice int

const (
	NoticeExpired Notice = iota
	NoticeCommitted
	NoticeCommitFailed
)

// Notifier receives notices. It runs on the machine's goroutine and must not
// call back into the Machine.
type Notifier func(n Notice, err error)

// Prompt describes the attempt when the user asks to submit.
type Prompt struct {
	Complete bool
	Answered int
	Total    int
}

// Confirmer asks the user whether to go ahead with a submit.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

// Committer submits an attempt for scoring. *scoring.Client implements it.
type Committer interface {
	Commit(ctx context.Context, a model.Attempt) (scoring.Result, error)
}

// Ticker delivers timer ticks. time.Ticker is wrapped by the default.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// Progress counts answered quizzes.
type Progress struct {
	Answered int
	Total    int
}

// Complete reports whether every quiz has a selection.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Answered == p.Total
}

// Percent returns the answered share in [0, 100].
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Answered) * 100 / float64(p.Total)
}

// Option configures a Machine.
type Option func(*Machine)

// WithTicker replaces the one-second ticker, mostly for tests.
func WithTicker(newTicker func(d time.Duration) Ticker) Option {
	return func(m *Machine) { m.newTicker = newTicker }
}

// WithClock replaces time.Now for stamping SubmittedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithNotifier sets the notice callback.
func WithNotifier(n Notifier) Option {
	return func(m *Machine) { m.notify = n }
}

type commitResult struct {
	res scoring.Result
	err error
}

// Machine owns one in-progress attempt. All state lives on the goroutine
// running Run; every method is an event on that loop, so answer toggles and
// timer ticks are applied in the order they arrive.
type Machine struct {
	params    model.SessionParams
	committer Committer
	notify    Notifier
	now       func() time.Time
	newTicker func(d time.Duration) Ticker

	ops     chan func()
	results chan commitResult
	done    chan struct{}
	state   atomic.Int32

	// Owned by the Run goroutine.
	runCtx    context.Context
	attempt   model.Attempt
	revealed  []bool
	timer     TimerState
	remaining int
	ticker    Ticker
	outcome   scoring.Result
	err       error
	settled   chan struct{}
}

// NewMachine creates a machine in the Loading state for an attempt produced
// by Initializer.Start or Resume. Call Run to activate it.
func NewMachine(a model.Attempt, params model.SessionParams, c Committer, opts ...Option) (*Machine, error) {
	if err := a.CheckAligned(); err != nil {
		return nil, err
	}
	m := &Machine{
		params:    params,
		committer: c,
		now:       time.Now,
		newTicker: func(d time.Duration) Ticker { return stdTicker{time.NewTicker(d)} },
		ops:       make(chan func()),
		results:   make(chan commitResult, 1),
		done:      make(chan struct{}),
		attempt:   a,
		revealed:  make([]bool, len(a.Quizzes)),
		settled:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run activates the session and processes events until ctx is done. A commit
// in flight when ctx ends still completes; its result is dropped.
func (m *Machine) Run(ctx context.Context) error {
	defer close(m.done)
	m.runCtx = ctx
	m.setState(StateActive)
	if m.params.Timed() {
		m.remaining = m.params.TimerMinutes * 60
		m.timer = TimerRunning
		m.ticker = m.newTicker(time.Second)
	}
	defer m.stopTimer()

	slog.Debug("session active", "exam", m.attempt.ExamName, "timed", m.params.Timed())
	for {
		select {
		case <-ctx.Done():
			slog.Debug("session stopped", "exam", m.attempt.ExamName, "state", m.State())
			return ctx.Err()
		case op := <-m.ops:
			op()
		case <-m.tickC():
			m.onTick()
		case r := <-m.results:
			m.onCommitResult(r)
		}
	}
}

// State returns the current lifecycle state without blocking.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// Mode returns the session mode.
func (m *Machine) Mode() model.Mode {
	return m.params.Mode
}

// ToggleAnswer adds opt to quiz i's selection, or removes it if present.
func (m *Machine) ToggleAnswer(i int, opt string) error {
	if opt == "" {
		return ErrEmptyOption
	}
	var err error
	if cerr := m.call(func() {
		if err = m.checkIndex(i); err != nil {
			return
		}
		if m.State() != StateActive {
			err = ErrNotActive
			return
		}
		ans := &m.attempt.Answers[i]
		for k, s := range ans.Selected {
			if s == opt {
				ans.Selected = append(ans.Selected[:k:k], ans.Selected[k+1:]...)
				return
			}
		}
		ans.Selected = append(ans.Selected, opt)
	}); cerr != nil {
		return cerr
	}
	return err
}

// Reveal marks quiz i's correct options visible. It only has an effect in
// practice mode, and a revealed quiz stays revealed.
func (m *Machine) Reveal(i int) error {
	var err error
	if cerr := m.call(func() {
		if err = m.checkIndex(i); err != nil {
			return
		}
		if m.params.Mode == model.ModePractice {
			m.revealed[i] = true
		}
	}); cerr != nil {
		return cerr
	}
	return err
}

// Revealed reports whether quiz i's correct options may be shown.
func (m *Machine) Revealed(i int) bool {
	var ok bool
	_ = m.call(func() {
		ok = i >= 0 && i < len(m.revealed) && m.revealed[i]
	})
	return ok
}

// Progress returns answered over total.
func (m *Machine) Progress() Progress {
	var p Progress
	_ = m.call(func() { p = m.progress() })
	return p
}

// Remaining returns the time left on the countdown and the timer state.
func (m *Machine) Remaining() (time.Duration, TimerState) {
	var (
		d  time.Duration
		ts TimerState
	)
	_ = m.call(func() {
		d = time.Duration(m.remaining) * time.Second
		ts = m.timer
	})
	return d, ts
}

// Snapshot returns a deep copy of the attempt.
func (m *Machine) Snapshot() (model.Attempt, error) {
	var (
		a   model.Attempt
		err error
	)
	if cerr := m.call(func() { a, err = m.attempt.Clone() }); cerr != nil {
		return model.Attempt{}, cerr
	}
	return a, err
}

// Submit asks c for confirmation and, if accepted, starts the commit. The
// timer keeps running while c waits for the user; if it expires first the
// session is already submitting and ErrNotActive is returned.
func (m *Machine) Submit(ctx context.Context, c Confirmer) error {
	if c == nil {
		return errors.New("submit needs a confirmer")
	}
	var (
		p   Prompt
		err error
	)
	if cerr := m.call(func() {
		if m.State() != StateActive {
			err = ErrNotActive
			return
		}
		pr := m.progress()
		p = Prompt{Complete: pr.Complete(), Answered: pr.Answered, Total: pr.Total}
	}); cerr != nil {
		return cerr
	}
	if err != nil {
		return err
	}

	ok, err := c.Confirm(ctx, p)
	if err != nil {
		return fmt.Errorf("confirm submit: %w", err)
	}
	if !ok {
		return ErrSubmitDeclined
	}

	if cerr := m.call(func() {
		if m.State() != StateActive {
			err = ErrNotActive
			return
		}
		m.beginCommit()
	}); cerr != nil {
		return cerr
	}
	return err
}

// Retry re-commits the same attempt after a failed commit.
func (m *Machine) Retry(ctx context.Context) error {
	var err error
	if cerr := m.call(func() {
		if m.State() != StateFailed {
			err = ErrNotActive
			return
		}
		m.beginCommit()
	}); cerr != nil {
		return cerr
	}
	return err
}

// Wait blocks until the current commit settles. It returns the scoring
// result when Completed and the *scoring.CommitError when Failed.
func (m *Machine) Wait(ctx context.Context) (scoring.Result, error) {
	for {
		var (
			st      State
			res     scoring.Result
			err     error
			settled chan struct{}
		)
		if cerr := m.call(func() {
			st, res, err, settled = m.State(), m.outcome, m.err, m.settled
		}); cerr != nil {
			return scoring.Result{}, cerr
		}
		switch st {
		case StateCompleted:
			return res, nil
		case StateFailed:
			return scoring.Result{}, err
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return scoring.Result{}, ctx.Err()
		case <-m.done:
			return scoring.Result{}, ErrStopped
		}
	}
}

// call runs fn on the Run goroutine and waits for it to finish.
func (m *Machine) call(fn func()) error {
	finished := make(chan struct{})
	select {
	case m.ops <- func() { fn(); close(finished) }:
	case <-m.done:
		return ErrStopped
	}
	<-finished
	return nil
}

func (m *Machine) setState(s State) {
	m.state.Store(int32(s))
}

func (m *Machine) checkIndex(i int) error {
	if err := m.attempt.CheckAligned(); err != nil {
		return err
	}
	if i < 0 || i >= len(m.attempt.Quizzes) {
		return fmt.Errorf("%w: %d", ErrQuizIndex, i)
	}
	return nil
}

func (m *Machine) progress() Progress {
	return Progress{Answered: m.attempt.AnsweredCount(), Total: len(m.attempt.Quizzes)}
}

func (m *Machine) tickC() <-chan time.Time {
	if m.ticker == nil {
		return nil
	}
	return m.ticker.C()
}

func (m *Machine) stopTimer() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

func (m *Machine) onTick() {
	if m.timer != TimerRunning {
		return
	}
	m.remaining--
	if m.remaining > 0 {
		return
	}
	m.remaining = 0
	m.timer = TimerExpired
	slog.Info("session time expired", "exam", m.attempt.ExamName, "answered", m.attempt.AnsweredCount())
	m.emit(NoticeExpired, nil)
	if m.State() == StateActive {
		m.beginCommit()
	}
}

// beginCommit moves to Submitting and commits a copy of the attempt in the
// background.
func (m *Machine) beginCommit() {
	m.stopTimer()
	m.attempt.SubmittedAt = m.now()
	m.err = nil
	m.setState(StateSubmitting)

	payload, err := m.attempt.Clone()
	if err != nil {
		m.onCommitResult(commitResult{err: err})
		return
	}
	ctx := context.WithoutCancel(m.runCtx)
	go func() {
		res, err := m.committer.Commit(ctx, payload)
		m.results <- commitResult{res: res, err: err}
	}()
}

func (m *Machine) onCommitResult(r commitResult) {
	if r.err != nil {
		var ce *scoring.CommitError
		if !errors.As(r.err, &ce) {
			r.err = &scoring.CommitError{Stage: scoring.StageSubmit, Err: r.err}
		}
		m.err = r.err
		m.setState(StateFailed)
		slog.Warn("commit failed", "exam", m.attempt.ExamName, "error", r.err)
		m.emit(NoticeCommitFailed, r.err)
	} else {
		m.outcome = r.res
		m.attempt.ID = r.res.Attempt.ID
		m.setState(StateCompleted)
		m.emit(NoticeCommitted, nil)
	}
	close(m.settled)
	m.settled = make(chan struct{})
}

func (m *Machine) emit(n Notice, err error) {
	if m.notify != nil {
		m.notify(n, err)
	}
}
