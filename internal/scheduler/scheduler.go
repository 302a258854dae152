// Package scheduler runs callbacks on fixed intervals behind a cancel token,
// so that callers can be driven by real tickers in production and by a
// manual clock in tests.
package scheduler

import (
	"sync"
	"time"
)

// Token cancels a scheduled callback. Cancel is idempotent. It does not
// interrupt a callback that is already running.
type Token interface {
	Cancel()
}

type Scheduler interface {
	// Every calls fn every interval until the returned token is cancelled.
	Every(interval time.Duration, fn func()) Token
	// After calls fn once after d unless the token is cancelled first.
	After(d time.Duration, fn func()) Token
	// Defer runs fn once, outside the caller's goroutine.
	Defer(fn func())
}

// Ticker is the production Scheduler backed by time.Ticker.
type Ticker struct {
	wg sync.WaitGroup
}

func NewTicker() *Ticker {
	return &Ticker{}
}

type tickerToken struct {
	once sync.Once
	stop chan struct{}
}

func (t *tickerToken) Cancel() {
	t.once.Do(func() { close(t.stop) })
}

func (s *Ticker) Every(interval time.Duration, fn func()) Token {
	tok := &tickerToken{stop: make(chan struct{})}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-tok.stop:
				return
			case <-ticker.C:
				// A tick can race with Cancel; honour the cancel.
				select {
				case <-tok.stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	return tok
}

func (s *Ticker) After(d time.Duration, fn func()) Token {
	tok := &tickerToken{stop: make(chan struct{})}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-tok.stop:
		case <-timer.C:
			select {
			case <-tok.stop:
				return
			default:
			}
			fn()
		}
	}()

	return tok
}

func (s *Ticker) Defer(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// Wait blocks until every ticker loop has exited and every deferred or
// in-flight callback has returned. Cancel all tokens first.
func (s *Ticker) Wait() {
	s.wg.Wait()
}
