package remote

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/entity"
)

var pushes = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Namespace: "salon",
	Name:      "remote_pushes_total",
	Help:      "Number of remote pushes, differentiated by scope and status.",
}, []string{"scope", "status"})

// Pusher is the write side of the backend.
type Pusher interface {
	PushState(ctx context.Context, secret string, agg Aggregate) Result
	PushReviews(ctx context.Context, secret string, reviews []entity.Review) Result
}

// Scope selects what a push replaces.
type Scope int

// Push scopes.
const (
	ScopeState Scope = iota + 1
	ScopeReviews
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeState:
		return "state"
	case ScopeReviews:
		return "reviews"
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Event is emitted after every committed local change.
type Event struct {
	Secret   string
	Snapshot Aggregate
	Scope    Scope
}

// Syncer pushes full snapshots in the background. Pushes are not serialized,
// whichever lands last wins on the backend.
type Syncer struct {
	pusher  Pusher
	timeout time.Duration

	mu   sync.Mutex
	last Result
	wg   sync.WaitGroup
}

// NewSyncer returns a syncer pushing through p. Each push gets timeout.
func NewSyncer(p Pusher, timeout time.Duration) *Syncer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Syncer{pusher: p, timeout: timeout, last: result(StatusIdle, "")}
}

// Notify starts a push for ev and returns immediately.
func (s *Syncer) Notify(ev Event) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		res := s.push(ev)
		pushes.WithLabelValues(ev.Scope.String(), string(res.Status)).Inc()

		if !res.OK() && res.Status != StatusNotConfigured {
			log.Warn().Str("scope", ev.Scope.String()).Str("status", string(res.Status)).Str("message", res.Message).
				Msg("remote sync failed, local state kept")
		}

		s.mu.Lock()
		s.last = res
		s.mu.Unlock()
	}()
}

// PushNow runs a push for ev synchronously and records its result.
func (s *Syncer) PushNow(ev Event) Result {
	res := s.push(ev)
	pushes.WithLabelValues(ev.Scope.String(), string(res.Status)).Inc()

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	return res
}

func (s *Syncer) push(ev Event) Result {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	switch ev.Scope {
	case ScopeReviews:
		return s.pusher.PushReviews(ctx, ev.Secret, ev.Snapshot.Reviews)
	case ScopeAll:
		if res := s.pusher.PushState(ctx, ev.Secret, ev.Snapshot); !res.OK() {
			return res
		}

		return s.pusher.PushReviews(ctx, ev.Secret, ev.Snapshot.Reviews)
	default:
		return s.pusher.PushState(ctx, ev.Secret, ev.Snapshot)
	}
}

// Status returns the result of the most recently finished push.
func (s *Syncer) Status() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last
}

// Wait blocks until every started push has finished.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
