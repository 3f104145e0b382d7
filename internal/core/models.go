package core

// TransactionStatus is the billing platform's vocabulary for a recorded payment.
type TransactionStatus string

const (
	StatusApproved   TransactionStatus = "approved"
	StatusPending    TransactionStatus = "pending"
	StatusDeclined   TransactionStatus = "declined"
	StatusVoid       TransactionStatus = "void"
	StatusReconciled TransactionStatus = "reconciled"
	StatusRefunded   TransactionStatus = "refunded"
	StatusReturned   TransactionStatus = "returned"
)

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusApproved, StatusPending, StatusDeclined, StatusVoid,
		StatusReconciled, StatusRefunded, StatusReturned:
		return true
	}
	return false
}
