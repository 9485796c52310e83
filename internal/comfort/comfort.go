// Package comfort drives the delayed comfort-message timer: a fixed delay
// from the most recent shaky event until the message becomes available, made
// resilient to the hosting process being suspended or killed.
package comfort

import (
	"sync"
	"time"

	"soberly/internal/constants"
	"soberly/internal/kvstore"
	"soberly/internal/logger"
	"soberly/internal/models"
)

// Message is the text delivered once the delay elapses after a shaky event
// with no drink recorded.
const Message = "You felt the urge and you didn't drink. That strength is real. Be proud of it."

// nowFunc is swapped out by tests.
var nowFunc = time.Now

// Controller arms the deferred ready-callback and tracks the foreground
// countdown. The countdown is display-only; correctness comes from the
// deferred callback, which is the sole writer of the comfort-ready flag.
type Controller struct {
	kv    *kvstore.Store
	sched Scheduler

	mu       sync.Mutex
	deadline time.Time // zero when no countdown is active

	onReady func() // optional, invoked after a ready transition commits
}

func New(kv *kvstore.Store, sched Scheduler) *Controller {
	return &Controller{
		kv:    kv,
		sched: sched,
	}
}

// SetReadyHook registers fn to run after the deferred callback flips the
// ready flag. Used by watch mode to deliver a notification.
func (c *Controller) SetReadyHook(fn func()) {
	c.mu.Lock()
	c.onReady = fn
	c.mu.Unlock()
}

// OnShakyRecorded restarts the countdown from now. Any pending callback is
// replaced, so only the most recent shaky event's timer wins.
func (c *Controller) OnShakyRecorded() {
	c.arm(constants.ComfortDelay)
}

// OnClearedByOutcome cancels the pending callback and zeroes the countdown.
// A definitive success/fail record makes the pending message moot. Cancelling
// with no timer active is a no-op.
func (c *Controller) OnClearedByOutcome() {
	c.sched.Cancel()
	c.mu.Lock()
	c.deadline = time.Time{}
	c.mu.Unlock()
}

// RestoreOnStartup re-arms the countdown after a process restart, deriving
// the remaining delay from the last persisted shaky timestamp. If the delay
// already elapsed while the process was down, it fires the catch-up
// immediately. Callers must run the day-rollover check first: a rollover
// clears the timestamps and the stale timer with them.
func (c *Controller) RestoreOnStartup() error {
	return c.Resync()
}

// Resync reconciles the in-process timer with the persisted state. Shaky
// events may be recorded by a different process than the one hosting the
// timer, so the watch loop calls this on every poll tick.
func (c *Controller) Resync() error {
	state, err := c.kv.Snapshot()
	if err != nil {
		return err
	}

	last, ok := state.LastShaky()
	if !ok || state.ComfortShown || state.ComfortReady || state.DailyStatus != models.StatusShaky {
		// Nothing pending: either no shaky event today, the message was
		// already delivered or dismissed, or a definitive outcome
		// superseded the shaky record.
		c.OnClearedByOutcome()
		return nil
	}

	deadline := last.Add(constants.ComfortDelay)
	now := nowFunc()
	if !now.Before(deadline) {
		// The delay ran out while no process was alive to fire it.
		c.fire()
		return nil
	}

	c.mu.Lock()
	current := c.deadline
	c.mu.Unlock()
	if current.Equal(deadline) {
		return nil
	}

	c.arm(deadline.Sub(now))
	logger.Debug("Comfort timer armed", "remaining", deadline.Sub(now).String())
	return nil
}

// Remaining reports the countdown still on the clock, for display only.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	deadline := c.deadline
	c.mu.Unlock()

	if deadline.IsZero() {
		return 0
	}
	r := deadline.Sub(nowFunc())
	if r < 0 {
		return 0
	}
	return r
}

func (c *Controller) arm(after time.Duration) {
	c.mu.Lock()
	c.deadline = nowFunc().Add(after)
	c.mu.Unlock()
	c.sched.ScheduleOnce(after, c.fire)
}

// fire is the deferred callback body. If the message was already dismissed
// (the user resolved the day some other way before the delay ran out), it
// does nothing; otherwise it makes the comfort message available.
func (c *Controller) fire() {
	c.mu.Lock()
	c.deadline = time.Time{}
	onReady := c.onReady
	c.mu.Unlock()

	transitioned := false
	_, err := c.kv.Edit(func(state *models.DayState) {
		if state.ComfortShown || state.ComfortReady {
			return
		}
		state.ComfortReady = true
		transitioned = true
	})
	if err != nil {
		logger.Error("Comfort ready transition failed", "error", err)
		return
	}

	if transitioned {
		logger.Info("Comfort message ready")
		if onReady != nil {
			onReady()
		}
	}
}
