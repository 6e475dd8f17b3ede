package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/orders"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

const defaultIdleTTL = 30 * time.Minute

// Session owns one shopper's cart and, once started, their checkout wizard.
// Callers must hold the session through Registry.With.
type Session struct {
	id       string
	cart     *cart.Store
	wizard   *checkout.Wizard
	lastSeen time.Time
	evicted  bool
	mu       sync.Mutex
	unsub    func()
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Cart() *cart.Store {
	return s.cart
}

// Wizard returns the active checkout, or NotFound when none was started.
func (s *Session) Wizard() (*checkout.Wizard, error) {
	if s.wizard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not started")
	}
	return s.wizard, nil
}

// RegistryParams configures a Registry.
type RegistryParams struct {
	Pricing   cart.Pricing
	Submitter orders.Submitter
	Logger    *logger.Logger
	Metrics   *metrics.CheckoutMetrics
	IdleTTL   time.Duration
	Now       func() time.Time
}

// Registry maps session ids to their state.
type Registry struct {
	pricing   cart.Pricing
	submitter orders.Submitter
	logg      *logger.Logger
	metrics   *metrics.CheckoutMetrics
	idleTTL   time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.IdleTTL <= 0 {
		params.IdleTTL = defaultIdleTTL
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Registry{
		pricing:   params.Pricing,
		submitter: params.Submitter,
		logg:      params.Logger,
		metrics:   params.Metrics,
		idleTTL:   params.IdleTTL,
		now:       params.Now,
		sessions:  map[string]*Session{},
	}, nil
}

// Pricing is the pricing applied to every session cart.
func (r *Registry) Pricing() cart.Pricing {
	return r.pricing
}

// Create starts a new session with an empty cart.
func (r *Registry) Create(ctx context.Context) *Session {
	store := cart.NewStore()
	sess := &Session{
		id:       uuid.NewString(),
		cart:     store,
		lastSeen: r.now(),
	}
	sess.unsub = store.Subscribe(func(change cart.Change) {
		r.metrics.IncCartMutation(change.Op.String())
	})

	r.mu.Lock()
	r.sessions[sess.id] = sess
	r.mu.Unlock()

	r.logg.Info(r.logg.WithSessionID(ctx, sess.id), "session.created")
	return sess
}

// With runs fn while holding the session exclusively.
func (r *Registry) With(ctx context.Context, id string, fn func(*Session) error) error {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.evicted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}
	sess.lastSeen = r.now()
	return fn(sess)
}

// BeginCheckout starts a fresh wizard for the session, discarding any
// previous draft. The cart must have at least one line.
func (r *Registry) BeginCheckout(sess *Session) (*checkout.Wizard, error) {
	if sess.cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	wizard, err := checkout.NewWizard(checkout.WizardParams{
		Cart:      sess.cart,
		Pricing:   r.pricing,
		Submitter: r.submitter,
		Logger:    r.logg,
		Metrics:   r.metrics,
		Now:       r.now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start checkout")
	}
	sess.wizard = wizard
	return wizard, nil
}

// AbandonCheckout drops the session's wizard and its draft.
func (r *Registry) AbandonCheckout(sess *Session) {
	sess.wizard = nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the configured TTL and returns
// how many were removed. Sessions in use are skipped.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, sess := range r.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			sess.evicted = true
			if sess.unsub != nil {
				sess.unsub()
			}
			evicted++
		}
		sess.mu.Unlock()
	}
	return evicted
}
