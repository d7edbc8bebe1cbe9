// Package payment simulates a checkout: a session moves from idle to
// processing when the buyer pays and to success after a fixed delay. No money
// is moved.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jo-hoe/pixweb/internal/core"
)

type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
)

var (
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrInvalidTransition = errors.New("invalid checkout state transition")
	ErrNothingSelected   = errors.New("no images selected")
	ErrCheckoutClosed    = errors.New("checkout is closed")
)

// allowed lists the only legal transitions. Success is reachable from
// processing alone.
var allowed = map[State]State{
	StateIdle:       StateProcessing,
	StateProcessing: StateSuccess,
}

// Item is one purchasable image.
type Item struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Image string     `json:"image"` // URL or data URL
	Price core.Price `json:"priceMinor"`
}

type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Session is a snapshot of one checkout.
type Session struct {
	ID           string       `json:"id"`
	CollectionID string       `json:"collectionId"`
	Items        []Item       `json:"items"`
	Currency     string       `json:"currency"`
	State        State        `json:"state"`
	Transitions  []Transition `json:"transitions"`
}

func (s *Session) Total() core.Price {
	var total core.Price
	for _, item := range s.Items {
		total += item.Price
	}
	return total
}

type session struct {
	Session
	done chan struct{}
	// expiresAt is zero while the payment is processing.
	expiresAt time.Time
}

func (s *session) snapshot() *Session {
	out := s.Session
	out.Items = append([]Item(nil), s.Items...)
	out.Transitions = append([]Transition(nil), s.Transitions...)
	return &out
}

// DefaultRetention is how long idle and completed sessions are kept when no
// retention is configured.
const DefaultRetention = 15 * time.Minute

// Checkout keeps sessions in memory. Payments in flight are bound to the
// checkout's lifetime and stop when Close is called. Idle and completed
// sessions are dropped once their retention has passed; processing sessions
// are kept until they complete.
type Checkout struct {
	delay     time.Duration
	retention time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCheckout(delay, retention time.Duration) *Checkout {
	if retention <= 0 {
		retention = DefaultRetention
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Checkout{
		delay:     delay,
		retention: retention,
		now:       time.Now,
		sessions:  make(map[string]*session),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (c *Checkout) Delay() time.Duration {
	return c.delay
}

// Open creates an idle session for the given items.
func (c *Checkout) Open(collectionID string, items []Item, currency string) (*Session, error) {
	if len(items) == 0 {
		return nil, ErrNothingSelected
	}
	if c.ctx.Err() != nil {
		return nil, ErrCheckoutClosed
	}

	s := &session{
		Session: Session{
			ID:           uuid.NewString(),
			CollectionID: collectionID,
			Items:        append([]Item(nil), items...),
			Currency:     currency,
			State:        StateIdle,
		},
		done: make(chan struct{}),
	}

	c.mu.Lock()
	c.evictExpiredLocked()
	s.expiresAt = c.now().Add(c.retention)
	c.sessions[s.ID] = s
	c.mu.Unlock()

	slog.Debug("checkout session opened", "session_id", s.ID, "collection_id", collectionID, "items", len(items))
	return s.snapshot(), nil
}

// Start moves an idle session to processing and completes it after the
// configured delay.
func (c *Checkout) Start(id string) (*Session, error) {
	c.mu.Lock()
	s, err := c.lookupLocked(id)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return nil, ErrCheckoutClosed
	}
	if err := c.transitionLocked(s, StateProcessing); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	snapshot := s.snapshot()
	c.wg.Add(1)
	c.mu.Unlock()

	go c.complete(s)
	return snapshot, nil
}

func (c *Checkout) complete(s *session) {
	defer c.wg.Done()

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-c.ctx.Done():
		slog.Debug("checkout stopped before completion", "session_id", s.ID)
		return
	}

	c.mu.Lock()
	err := c.transitionLocked(s, StateSuccess)
	c.mu.Unlock()
	if err != nil {
		slog.Error("checkout completion failed", "session_id", s.ID, "error", err)
		return
	}
	slog.Info("mock payment succeeded", "session_id", s.ID, "total_minor", int64(s.Total()), "currency", s.Currency)
}

func (c *Checkout) transitionLocked(s *session, to State) error {
	if allowed[s.State] != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
	}
	now := c.now()
	s.Transitions = append(s.Transitions, Transition{From: s.State, To: to, At: now})
	s.State = to
	switch to {
	case StateProcessing:
		s.expiresAt = time.Time{}
	case StateSuccess:
		s.expiresAt = now.Add(c.retention)
		close(s.done)
	}
	return nil
}

// lookupLocked returns a live session, dropping it if it has expired.
func (c *Checkout) lookupLocked(id string) (*session, error) {
	s, ok := c.sessions[id]
	if ok && c.expiredLocked(s) {
		delete(c.sessions, id)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (c *Checkout) expiredLocked(s *session) bool {
	return !s.expiresAt.IsZero() && !c.now().Before(s.expiresAt)
}

func (c *Checkout) evictExpiredLocked() {
	for id, s := range c.sessions {
		if c.expiredLocked(s) {
			delete(c.sessions, id)
		}
	}
}

// Len reports how many sessions are held, expired ones not yet swept
// included.
func (c *Checkout) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Checkout) Get(id string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.lookupLocked(id)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// Wait blocks until the session succeeded or ctx is done.
func (c *Checkout) Wait(ctx context.Context, id string) (*Session, error) {
	c.mu.Lock()
	s, err := c.lookupLocked(id)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	select {
	case <-s.done:
		return c.Get(id)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, ErrCheckoutClosed
	}
}

// Close stops payments in flight and waits for their goroutines.
func (c *Checkout) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}
