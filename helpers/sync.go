package helpers

import (
	"sync"
	"time"
)

func WithLock(l sync.Locker, f func()) {
	l.Lock()
	defer l.Unlock()
	f()
}

func WithLockError(l sync.Locker, f func() error) error {
	l.Lock()
	defer l.Unlock()
	return f()
}

// TimedMutex is a mutex with bounded waiting. A request/response
// core must not block a caller forever, so acquisition gives up
// after a timeout and the caller reports busy instead.
type TimedMutex struct {
	initOnce sync.Once
	ch       chan struct{}
}

func (tm *TimedMutex) init() {
	tm.initOnce.Do(func() {
		tm.ch = make(chan struct{}, 1)
		tm.ch <- struct{}{}
	})
}

func (tm *TimedMutex) Lock() {
	tm.init()
	<-tm.ch
}

// LockWait acquires within timeout, false means not acquired.
// timeout<=0 degrades to a single immediate attempt.
func (tm *TimedMutex) LockWait(timeout time.Duration) bool {
	tm.init()
	if timeout <= 0 {
		select {
		case <-tm.ch:
			return true
		default:
			return false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-tm.ch:
		return true
	case <-t.C:
		return false
	}
}

func (tm *TimedMutex) Unlock() {
	tm.init()
	select {
	case tm.ch <- struct{}{}:
	default:
		panic("TimedMutex.Unlock without Lock")
	}
}
