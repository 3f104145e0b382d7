package alipay

import (
	"context"
	"fmt"

	"alipaygw/internal/core"

	"github.com/rs/zerolog/log"
)

// DirectionInput marks audit entries for inbound traffic.
const DirectionInput = "input"

// TransactionStore answers whether a trade was already recorded for a client.
type TransactionStore interface {
	ExistsByTransactionAndClient(ctx context.Context, transactionID, clientID string) (bool, error)
}

// AuditEntry is one line in the gateway log.
type AuditEntry struct {
	Context    string
	RawPayload string
	Direction  string
	Success    bool
}

// AuditLog is a write-only sink for gateway traffic.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// Inbound is a callback or redirect as received. URI is the request URI used in
// the audit context; Fields holds every received field, client_id included.
type Inbound struct {
	URI    string
	Fields FieldSet
}

type Verdict string

const (
	// VerdictRejected: signature, confirmation or is_success gate failed.
	VerdictRejected Verdict = "rejected"
	// VerdictIgnored: authentic, but nothing to record.
	VerdictIgnored  Verdict = "ignored"
	VerdictPending  Verdict = "pending"
	VerdictApproved Verdict = "approved"
)

// Resolution pairs the verdict with the outcome, which is nil for rejected and
// ignored messages.
type Resolution struct {
	Verdict Verdict
	Outcome *TransactionOutcome
}

// Authentic reports whether both gates passed.
func (r Resolution) Authentic() bool {
	return r.Verdict != VerdictRejected
}

// Resolver turns inbound gateway messages into outcomes. It keeps no state
// between calls.
type Resolver struct {
	secret  string
	checker NotifyChecker
	store   TransactionStore
	audit   AuditLog
}

func NewResolver(secret string, checker NotifyChecker, store TransactionStore, audit AuditLog) *Resolver {
	return &Resolver{
		secret:  secret,
		checker: checker,
		store:   store,
		audit:   audit,
	}
}

// ResolveNotification handles the asynchronous server-to-server notification.
// A nil outcome with a nil error means there is nothing to record.
func (r *Resolver) ResolveNotification(ctx context.Context, in Inbound) (*TransactionOutcome, error) {
	res, err := r.Notification(ctx, in)
	return res.Outcome, err
}

// ResolveReturn handles the browser redirect back from the gateway.
func (r *Resolver) ResolveReturn(ctx context.Context, in Inbound) (*TransactionOutcome, error) {
	res, err := r.Return(ctx, in)
	return res.Outcome, err
}

// Notification is ResolveNotification with the verdict exposed.
func (r *Resolver) Notification(ctx context.Context, in Inbound) (Resolution, error) {
	clientID, fields, claimed := split(in.Fields)
	auditCtx := "CALLBACK: " + in.URI

	if !r.authentic(ctx, fields, claimed) {
		r.record(ctx, auditCtx, in.Fields, false)
		return Resolution{Verdict: VerdictRejected}, nil
	}
	r.record(ctx, auditCtx, in.Fields, true)

	if fields.Get(KeyTradeStatus) != tradeFinished {
		return Resolution{Verdict: VerdictIgnored}, nil
	}

	dup, err := r.duplicate(ctx, fields, clientID)
	if err != nil {
		return Resolution{Verdict: VerdictIgnored}, err
	}
	if dup {
		return Resolution{Verdict: VerdictIgnored}, nil
	}

	return Resolution{
		Verdict: VerdictApproved,
		Outcome: outcomeFrom(fields, clientID, core.StatusApproved),
	}, nil
}

// Return is ResolveReturn with the verdict exposed. The redirect always gives
// the customer a status once the gates pass, so a finished trade that was
// already recorded reads as pending.
func (r *Resolver) Return(ctx context.Context, in Inbound) (Resolution, error) {
	clientID, fields, claimed := split(in.Fields)
	auditCtx := "RETURN: " + in.URI

	if fields.Get(KeyIsSuccess) != "T" || !r.authentic(ctx, fields, claimed) {
		r.record(ctx, auditCtx, in.Fields, false)
		return Resolution{Verdict: VerdictRejected}, nil
	}
	r.record(ctx, auditCtx, in.Fields, true)

	if fields.Get(KeyTradeStatus) == tradeFinished {
		dup, err := r.duplicate(ctx, fields, clientID)
		if err != nil {
			return Resolution{Verdict: VerdictIgnored}, err
		}
		if !dup {
			return Resolution{
				Verdict: VerdictApproved,
				Outcome: outcomeFrom(fields, clientID, core.StatusApproved),
			}, nil
		}
	}

	return Resolution{
		Verdict: VerdictPending,
		Outcome: outcomeFrom(fields, clientID, core.StatusPending),
	}, nil
}

// split removes the out-of-band and signature fields, leaving the signed set.
func split(raw FieldSet) (clientID string, signed FieldSet, claimed string) {
	return raw.Get(KeyClientID), raw.Without(KeyClientID, KeySignType, KeySign), raw.Get(KeySign)
}

// authentic runs the signature gate, then the remote confirmation. The remote
// call is skipped when the signature is already wrong.
func (r *Resolver) authentic(ctx context.Context, fields FieldSet, claimed string) bool {
	if !Verify(fields, claimed, r.secret) {
		log.Warn().
			Str("trade_no", fields.Get(KeyTradeNo)).
			Msg("alipay signature mismatch")
		return false
	}
	if !r.checker.Confirm(ctx, fields.Get(KeyNotifyID)) {
		log.Warn().
			Str("trade_no", fields.Get(KeyTradeNo)).
			Str("notify_id", fields.Get(KeyNotifyID)).
			Msg("alipay notification not confirmed")
		return false
	}
	return true
}

func (r *Resolver) duplicate(ctx context.Context, fields FieldSet, clientID string) (bool, error) {
	tradeNo := fields.Get(KeyTradeNo)
	exists, err := r.store.ExistsByTransactionAndClient(ctx, tradeNo, clientID)
	if err != nil {
		return false, fmt.Errorf("lookup transaction %s for client %s: %w", tradeNo, clientID, err)
	}
	if exists {
		log.Info().
			Str("trade_no", tradeNo).
			Str("client_id", clientID).
			Msg("alipay trade already recorded")
	}
	return exists, nil
}

// record writes the untouched inbound set; a failing sink never changes the outcome.
func (r *Resolver) record(ctx context.Context, auditCtx string, raw FieldSet, success bool) {
	if r.audit == nil {
		return
	}
	err := r.audit.Record(ctx, AuditEntry{
		Context:    auditCtx,
		RawPayload: raw.Encode(),
		Direction:  DirectionInput,
		Success:    success,
	})
	if err != nil {
		log.Error().Err(err).Str("context", auditCtx).Msg("failed to write gateway log")
	}
}
