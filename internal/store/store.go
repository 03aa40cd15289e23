package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
)

// DefaultCloseDue is the advisory CloseDueAt window set when a ticket is
// resolved. Nothing closes the ticket when it passes.
const DefaultCloseDue = 3 * 24 * time.Hour

// State is one committed snapshot. A committed State is never mutated; the
// reducer builds a new one for every change.
type State struct {
	Tickets       []*domain.Ticket
	KnowledgeBase []*domain.Article
	Notifications []domain.Notification
	Metrics       domain.Metrics
}

// Clone returns a deep copy that callers may modify freely.
func (s *State) Clone() State {
	out := State{
		Tickets:       make([]*domain.Ticket, 0, len(s.Tickets)),
		KnowledgeBase: make([]*domain.Article, 0, len(s.KnowledgeBase)),
		Notifications: make([]domain.Notification, 0, len(s.Notifications)),
		Metrics:       s.Metrics.Clone(),
	}
	for _, t := range s.Tickets {
		out.Tickets = append(out.Tickets, t.Clone())
	}
	for _, a := range s.KnowledgeBase {
		out.KnowledgeBase = append(out.KnowledgeBase, a.Clone())
	}
	for _, n := range s.Notifications {
		if n.TicketID != nil {
			id := *n.TicketID
			n.TicketID = &id
		}
		out.Notifications = append(out.Notifications, n)
	}
	return out
}

// Store owns the helpdesk state. Writers are serialized by mu; readers grab
// the current snapshot pointer and never observe a half-applied change.
type Store struct {
	mu    sync.RWMutex
	state *State
	last  time.Time

	ids        *IDAllocator
	clock      func() time.Time
	policy     domain.WorkflowPolicy
	closeDue   time.Duration
	retention  int
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithPolicy selects strict or permissive status handling.
func WithPolicy(policy domain.WorkflowPolicy) Option {
	return func(s *Store) { s.policy = policy }
}

// WithDispatcher publishes commit events to d.
func WithDispatcher(d events.Dispatcher) Option {
	return func(s *Store) { s.dispatcher = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithCloseDueAfter sets the auto-close window applied on Resolved.
func WithCloseDueAfter(d time.Duration) Option {
	return func(s *Store) { s.closeDue = d }
}

// WithNotificationRetention caps the notification log; 0 keeps everything.
func WithNotificationRetention(n int) Option {
	return func(s *Store) { s.retention = n }
}

func WithIDAllocator(ids *IDAllocator) Option {
	return func(s *Store) { s.ids = ids }
}

// New builds a store around the initial state.
func New(initial State, opts ...Option) *Store {
	s := &Store{
		ids:      NewIDAllocator(SeedCounter),
		clock:    time.Now,
		policy:   domain.WorkflowStrict,
		closeDue: DefaultCloseDue,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	st := initial.Clone()
	s.state = &st
	for _, t := range st.Tickets {
		if t.UpdatedAt.After(s.last) {
			s.last = t.UpdatedAt
		}
	}
	return s
}

// Policy reports the active workflow policy.
func (s *Store) Policy() domain.WorkflowPolicy {
	return s.policy
}

// Snapshot returns a deep copy of the latest committed state.
func (s *Store) Snapshot() State {
	return s.current().Clone()
}

// Ticket returns a copy of one ticket.
func (s *Store) Ticket(id string) (*domain.Ticket, bool) {
	st := s.current()
	idx := ticketIndex(st.Tickets, id)
	if idx < 0 {
		return nil, false
	}
	return st.Tickets[idx].Clone(), true
}

// Article returns a copy of one knowledge base article.
func (s *Store) Article(id string) (*domain.Article, bool) {
	st := s.current()
	idx := articleIndex(st.KnowledgeBase, id)
	if idx < 0 {
		return nil, false
	}
	return st.KnowledgeBase[idx].Clone(), true
}

func (s *Store) current() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// commit runs build and the reducer under the write lock. build receives the
// commit time so entities and the reduction agree on "now". Events are
// published once the lock is released.
func (s *Store) commit(ctx context.Context, build func(now time.Time) Action) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := s.tick()
	action := build(now)
	next, evts, err := reduce(s.state, action, reduceEnv{
		now:       now,
		ids:       s.ids,
		policy:    s.policy,
		closeDue:  s.closeDue,
		retention: s.retention,
	})
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("action rejected", zap.String("action", action.actionName()), zap.Error(err))
		return nil, err
	}
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("action committed", zap.String("action", action.actionName()), zap.Int("events", len(evts)))
	s.publish(ctx, evts)
	return next, nil
}

// tick returns the commit timestamp. It never goes backwards so UpdatedAt
// stays non-decreasing even if the wall clock steps back.
func (s *Store) tick() time.Time {
	now := s.clock()
	if now.Before(s.last) {
		now = s.last
	}
	s.last = now
	return now
}

func (s *Store) publish(ctx context.Context, evts []events.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, evt := range evts {
		evt.ID = uuid.NewString()
		if err := s.dispatcher.Publish(ctx, evt); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("event_id", evt.ID),
				zap.String("event_type", string(evt.Type)),
				zap.Error(err),
			)
		}
	}
}
