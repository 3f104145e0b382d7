package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alipaygw/internal/provider/alipay"

	"github.com/shopspring/decimal"
)

type TransactionRow struct {
	ID            int64                      `json:"id"`
	ClientID      string                     `json:"clientId"`
	TransactionID string                     `json:"transactionId"`
	ReferenceID   string                     `json:"referenceId"`
	Amount        decimal.Decimal            `json:"amount"`
	Currency      string                     `json:"currency"`
	Status        string                     `json:"status"`
	Invoices      []alipay.InvoiceAllocation `json:"invoices"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

// ExistsByTransactionAndClient backs duplicate detection on the (trade, client) pair.
func (r *Repo) ExistsByTransactionAndClient(ctx context.Context, transactionID, clientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM gateway_transactions
			 WHERE transaction_id=$1 AND client_id=$2
		)`,
		transactionID, clientID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists transaction: %w", err)
	}
	return exists, nil
}

// RecordTransaction inserts an outcome once. It reports false when the pair was
// already recorded by a concurrent delivery.
func (r *Repo) RecordTransaction(ctx context.Context, o *alipay.TransactionOutcome) (bool, error) {
	invoices := o.Invoices
	if invoices == nil {
		invoices = []alipay.InvoiceAllocation{}
	}
	invJSON, err := json.Marshal(invoices)
	if err != nil {
		return false, fmt.Errorf("marshal invoices: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO gateway_transactions (
			client_id, transaction_id, reference_id, amount, currency, status, invoices
		)
		VALUES ($1,$2,$3,$4::numeric,$5,$6,$7::jsonb)
		ON CONFLICT (transaction_id, client_id) DO NOTHING`,
		o.ClientID, o.TransactionID, o.ReferenceID, o.Amount.StringFixed(2),
		o.Currency, string(o.Status), string(invJSON),
	)
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) ListTransactions(ctx context.Context, limit, offset int) ([]TransactionRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_id, transaction_id, reference_id, amount::text, currency,
		       status, invoices::text, created_at
		  FROM gateway_transactions
		 ORDER BY id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TransactionRow{}
	for rows.Next() {
		var (
			t        TransactionRow
			amount   string
			invoices string
		)
		if err := rows.Scan(&t.ID, &t.ClientID, &t.TransactionID, &t.ReferenceID, &amount,
			&t.Currency, &t.Status, &invoices, &t.CreatedAt); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %d amount: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(invoices), &t.Invoices); err != nil {
			return nil, fmt.Errorf("transaction %d invoices: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
