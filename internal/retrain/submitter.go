package retrain

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned when a retrain is already in flight.
var ErrBusy = errors.New("a retrain request is already in flight")

// Submitter allows one retrain in flight at a time. Cancel abandons the
// pending call: its result is dropped and its callback never runs. A later
// Submit supersedes anything abandoned. Nothing is retried.
type Submitter struct {
	client Retrainer

	mu     sync.Mutex
	gen    uint64
	busy   bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSubmitter wraps client.
func NewSubmitter(client Retrainer) *Submitter {
	return &Submitter{client: client}
}

// Submit validates cfg and starts the call in the background. done runs
// once with the outcome unless the call is cancelled first. Validation
// failures are returned immediately and start nothing.
func (s *Submitter) Submit(ctx context.Context, cfg Config, done func(*Response, error)) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.gen++
	gen := s.gen
	cctx, cancel := context.WithCancel(ctx)
	s.busy = true
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		resp, err := s.client.Retrain(cctx, cfg)

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.busy = false
		s.cancel = nil
		s.mu.Unlock()
		if done != nil {
			done(resp, err)
		}
	}()
	return nil
}

// Busy reports whether a call is in flight.
func (s *Submitter) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Cancel abandons the in-flight call, if any.
func (s *Submitter) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.busy {
		return
	}
	s.gen++
	s.busy = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Wait blocks until every started call has returned, including abandoned ones.
func (s *Submitter) Wait() { s.wg.Wait() }
