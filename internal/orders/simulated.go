package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const defaultOrderIDPrefix = "ORD"

// SimulatedSubmitter stands in for an order backend: it waits for a fixed
// delay and then accepts every well-formed request.
type SimulatedSubmitter struct {
	delay  time.Duration
	prefix string
	now    func() time.Time
}

func NewSimulatedSubmitter(delay time.Duration, prefix string) *SimulatedSubmitter {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultOrderIDPrefix
	}
	if delay < 0 {
		delay = 0
	}
	return &SimulatedSubmitter{delay: delay, prefix: prefix, now: time.Now}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	if len(req.Lines) == 0 {
		return Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, contextError(ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Receipt{}, contextError(err)
	}

	return Receipt{
		OrderID:  NewOrderID(s.prefix),
		PlacedAt: s.now().UTC(),
	}, nil
}

// NewOrderID builds an opaque, human-readable order identifier.
func NewOrderID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:10])
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "order submission timed out")
	}
	return err
}
