package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"go.uber.org/multierr"
)

// DefaultExpiryBatch bounds how many stale attempts one sweep inspects.
const DefaultExpiryBatch = 100

// ExpireStaleAttempts reconciles attempts still awaiting payment after their
// gateway session lapsed. Sessions the gateway reports paid are confirmed;
// the rest are expired at the gateway and locally. Reservations that never
// got a gateway session are expired locally. It returns how many attempts
// reached a terminal state.
func (s *Service) ExpireStaleAttempts(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultExpiryBatch
	}
	stale, err := s.attempts.ListStaleAwaiting(ctx, now.UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("list stale checkout attempts: %w", err)
	}

	var (
		settled int
		errs    error
	)
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return settled, multierr.Append(errs, err)
		}
		attempt := &stale[i]

		if attempt.Status == enums.CheckoutAttemptPending {
			moved, err := s.attempts.TransitionStatus(ctx, attempt.ID, enums.CheckoutAttemptPending, enums.CheckoutAttemptExpired)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("expire attempt %s: %w", attempt.ID, err))
				continue
			}
			if moved {
				settled++
			}
			continue
		}

		gs, err := s.gateway.GetSession(ctx, attempt.GatewaySessionID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("retrieve session %s: %w", attempt.GatewaySessionID, err))
			continue
		}

		if gs.Confirmed() {
			order, err := s.confirm(ctx, attempt, SourceExpiry)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("confirm session %s: %w", attempt.GatewaySessionID, err))
				continue
			}
			s.bindToSession(ctx, attempt, order)
			settled++
			continue
		}

		if gs.Status == GatewayStatusOpen {
			if err := s.gateway.ExpireSession(ctx, attempt.GatewaySessionID); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("expire session %s: %w", attempt.GatewaySessionID, err))
				continue
			}
		}

		moved, err := s.attempts.TransitionStatus(ctx, attempt.ID, enums.CheckoutAttemptAwaitingPayment, enums.CheckoutAttemptExpired)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire attempt %s: %w", attempt.ID, err))
			continue
		}
		if moved {
			s.metrics.IncConfirmation(SourceExpiry, metrics.OutcomeExpired)
			settled++
		}
	}
	return settled, errs
}
