package seller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const submitFailureMessage = "Failed to register as seller. Please try again."

// Registration is the result of a successful onboarding.
type Registration struct {
	SellerID     uuid.UUID `json:"sellerId"`
	StoreName    string    `json:"storeName"`
	Plan         Plan      `json:"plan"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Service onboards sellers.
type Service interface {
	Plans() []Plan
	Register(ctx context.Context, app Application) (Registration, error)
}

// ServiceParams configures the simulated registration backend.
type ServiceParams struct {
	Currency currency.Unit
	Delay    time.Duration
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	currency currency.Unit
	delay    time.Duration
	logg     *logger.Logger
	now      func() time.Time

	mu     sync.Mutex
	stores map[string]uuid.UUID
}

func NewService(params ServiceParams) (Service, error) {
	if params.Currency == (currency.Unit{}) {
		return nil, errors.New("currency required")
	}
	if params.Delay < 0 {
		return nil, errors.New("registration delay must not be negative")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		currency: params.Currency,
		delay:    params.Delay,
		logg:     params.Logger.Component("seller"),
		now:      params.Now,
		stores:   map[string]uuid.UUID{},
	}, nil
}

func (s *service) Plans() []Plan {
	return Catalog(s.currency)
}

// Register validates the application, waits out the simulated backend and
// records the store. Failures that are not about a single field are reported
// under the "submit" detail key.
func (s *service) Register(ctx context.Context, app Application) (Registration, error) {
	app = app.normalized()
	if problems := app.Validate(); len(problems) > 0 {
		return Registration{}, pkgerrors.New(pkgerrors.CodeValidation, "seller application is incomplete").WithDetails(problems)
	}
	plan, err := FindPlan(s.currency, app.Plan)
	if err != nil {
		return Registration{}, err
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Registration{}, submitError(pkgerrors.CodeTimeout, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Registration{}, submitError(pkgerrors.CodeTimeout, err)
	}

	key := strings.ToLower(app.StoreName)
	s.mu.Lock()
	if _, taken := s.stores[key]; taken {
		s.mu.Unlock()
		return Registration{}, pkgerrors.New(pkgerrors.CodeStateConflict, "store name already registered").
			WithDetails(map[string]string{SubmitField: "A store with this name already exists"})
	}
	id := uuid.New()
	s.stores[key] = id
	s.mu.Unlock()

	reg := Registration{
		SellerID:     id,
		StoreName:    app.StoreName,
		Plan:         plan,
		RegisteredAt: s.now().UTC(),
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"seller_id": id.String(),
		"plan":      plan.ID.String(),
	})
	s.logg.Info(ctx, "seller.registered")
	return reg, nil
}

func submitError(code pkgerrors.Code, cause error) error {
	return pkgerrors.Wrap(code, cause, "seller registration interrupted").
		WithDetails(map[string]string{SubmitField: submitFailureMessage})
}
