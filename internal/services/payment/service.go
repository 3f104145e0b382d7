package payment

import (
	"context"
	"errors"
	"fmt"

	"alipaygw/internal/core"
	"alipaygw/internal/provider/alipay"

	"github.com/rs/zerolog/log"
)

// ErrInFlight means another delivery of the same trade is being recorded.
var ErrInFlight = errors.New("transaction already in progress")

// Ledger records approved outcomes.
type Ledger interface {
	RecordTransaction(ctx context.Context, o *alipay.TransactionOutcome) (bool, error)
}

// InFlightGuard serializes concurrent deliveries of one trade.
type InFlightGuard interface {
	Acquire(ctx context.Context, transactionID string) (bool, error)
	Complete(ctx context.Context, transactionID string) error
	Release(ctx context.Context, transactionID string) error
}

// Service handles payment business logic
type Service struct {
	ledger Ledger
	guard  InFlightGuard
}

// NewService creates a new payment service. guard may be nil.
func NewService(ledger Ledger, guard InFlightGuard) *Service {
	return &Service{
		ledger: ledger,
		guard:  guard,
	}
}

// Apply records an approved outcome. Pending outcomes are only logged; a nil
// outcome is a no-op.
func (s *Service) Apply(ctx context.Context, res alipay.Resolution) error {
	o := res.Outcome
	if o == nil {
		return nil
	}
	if o.Status != core.StatusApproved {
		log.Info().
			Str("transaction_id", o.TransactionID).
			Str("client_id", o.ClientID).
			Str("status", string(o.Status)).
			Msg("payment not yet finished")
		return nil
	}

	if s.guard != nil {
		ok, err := s.guard.Acquire(ctx, o.TransactionID)
		if err != nil {
			// The unique key still prevents double recording.
			log.Warn().Err(err).Str("transaction_id", o.TransactionID).Msg("in-flight guard unavailable")
		} else if !ok {
			return ErrInFlight
		} else {
			return s.recordGuarded(ctx, o)
		}
	}

	_, err := s.record(ctx, o)
	return err
}

func (s *Service) recordGuarded(ctx context.Context, o *alipay.TransactionOutcome) error {
	if _, err := s.record(ctx, o); err != nil {
		if rerr := s.guard.Release(ctx, o.TransactionID); rerr != nil {
			log.Warn().Err(rerr).Str("transaction_id", o.TransactionID).Msg("failed to release guard")
		}
		return err
	}
	if err := s.guard.Complete(ctx, o.TransactionID); err != nil {
		log.Warn().Err(err).Str("transaction_id", o.TransactionID).Msg("failed to mark guard completed")
	}
	return nil
}

func (s *Service) record(ctx context.Context, o *alipay.TransactionOutcome) (bool, error) {
	inserted, err := s.ledger.RecordTransaction(ctx, o)
	if err != nil {
		return false, fmt.Errorf("record transaction %s: %w", o.TransactionID, err)
	}
	log.Info().
		Str("transaction_id", o.TransactionID).
		Str("client_id", o.ClientID).
		Str("amount", o.Amount.StringFixed(2)).
		Bool("inserted", inserted).
		Msg("payment recorded")
	return inserted, nil
}
