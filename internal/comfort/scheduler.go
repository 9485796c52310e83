package comfort

import (
	"sync"
	"time"
)

// Scheduler is the deferred-callback boundary. ScheduleOnce replaces any
// callback still pending under this scheduler; Cancel is idempotent and safe
// to call when nothing is scheduled.
type Scheduler interface {
	ScheduleOnce(after time.Duration, fn func())
	Cancel()
}

// TimerScheduler runs the deferred callback on an in-process timer. It only
// covers the lifetime of a hosting process (watch or tui); durability across
// process death comes from RestoreOnStartup re-arming from the persisted
// shaky timestamp.
type TimerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) ScheduleOnce(after time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(after, fn)
}

func (s *TimerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
