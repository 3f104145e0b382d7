package postgres

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"alipaygw/internal/core"
	"alipaygw/internal/provider/alipay"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

func scanInto(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i := range dest {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(vals[i]))
	}
	return nil
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.vals, dest)
}

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(r.data[r.pos-1], dest)
}

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs   []execCall
	execTag string
	execErr error
	row     fakeRow
	rows    [][]any
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag(f.execTag), f.execErr
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &fakeRows{data: f.rows}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.row
}

// --- Tests ---

func TestRepo_ExistsByTransactionAndClient(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		repo := NewRepo(&fakeDB{row: fakeRow{vals: []any{true}}})
		ok, err := repo.ExistsByTransactionAndClient(ctx, "T1", "42")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Error", func(t *testing.T) {
		repo := NewRepo(&fakeDB{row: fakeRow{err: errors.New("conn reset")}})
		_, err := repo.ExistsByTransactionAndClient(ctx, "T1", "42")
		assert.ErrorContains(t, err, "conn reset")
	})
}

func TestRepo_RecordTransaction(t *testing.T) {
	ctx := context.Background()
	outcome := &alipay.TransactionOutcome{
		ClientID:      "42",
		Amount:        decimal.RequireFromString("15.5"),
		Currency:      alipay.Currency,
		Invoices:      []alipay.InvoiceAllocation{{ID: "10", Amount: "15.50"}},
		Status:        core.StatusApproved,
		TransactionID: "T1",
		ReferenceID:   "42-1700000000",
	}

	t.Run("Inserted", func(t *testing.T) {
		db := &fakeDB{execTag: "INSERT 0 1"}
		inserted, err := NewRepo(db).RecordTransaction(ctx, outcome)
		require.NoError(t, err)
		assert.True(t, inserted)

		require.Len(t, db.execs, 1)
		assert.Contains(t, db.execs[0].sql, "ON CONFLICT (transaction_id, client_id) DO NOTHING")
		assert.Equal(t, []any{
			"42", "T1", "42-1700000000", "15.50", "CNY", "approved",
			`[{"id":"10","amount":"15.50"}]`,
		}, db.execs[0].args)
	})

	t.Run("AlreadyRecorded", func(t *testing.T) {
		db := &fakeDB{execTag: "INSERT 0 0"}
		inserted, err := NewRepo(db).RecordTransaction(ctx, outcome)
		require.NoError(t, err)
		assert.False(t, inserted)
	})

	t.Run("NilInvoicesStoredAsEmptyArray", func(t *testing.T) {
		db := &fakeDB{execTag: "INSERT 0 1"}
		o := *outcome
		o.Invoices = nil
		_, err := NewRepo(db).RecordTransaction(ctx, &o)
		require.NoError(t, err)
		assert.Equal(t, "[]", db.execs[0].args[6])
	})

	t.Run("ExecError", func(t *testing.T) {
		db := &fakeDB{execErr: errors.New("unique violation")}
		_, err := NewRepo(db).RecordTransaction(ctx, outcome)
		assert.Error(t, err)
	})
}

func TestRepo_ListTransactions(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{rows: [][]any{
		{int64(2), "42", "T2", "42-2", "3.00", "CNY", "approved", "[]", created},
		{int64(1), "42", "T1", "42-1", "15.50", "CNY", "approved", `[{"id":"10","amount":"15.50"}]`, created},
	}}

	rows, err := NewRepo(db).ListTransactions(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "T2", rows[0].TransactionID)
	assert.Empty(t, rows[0].Invoices)
	assert.Equal(t, "15.50", rows[1].Amount.StringFixed(2))
	assert.Equal(t, []alipay.InvoiceAllocation{{ID: "10", Amount: "15.50"}}, rows[1].Invoices)
}

func TestGatewayLog_Record(t *testing.T) {
	db := &fakeDB{execTag: "INSERT 0 1"}
	l := NewGatewayLog(NewRepo(db), "alipay_direct")

	err := l.Record(context.Background(), alipay.AuditEntry{
		Context:    "CALLBACK: /callback/1/alipay/",
		RawPayload: "a=1",
		Direction:  alipay.DirectionInput,
		Success:    true,
	})
	require.NoError(t, err)
	require.Len(t, db.execs, 1)
	assert.Equal(t, []any{"alipay_direct", "CALLBACK: /callback/1/alipay/", "a=1", "input", true}, db.execs[0].args)
}
