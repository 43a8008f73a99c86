package ledger

import "github.com/hamkkebu/transaction-service/internal/domain/shared"

// Domain errors for transaction and ledger access
var (
	ErrTransactionNotFound = shared.NewDomainError("TRANSACTION_NOT_FOUND", "Transaction not found")
	ErrLedgerNotFound      = shared.NewDomainError("LEDGER_NOT_FOUND", "Ledger not found")
	ErrLedgerAccessDenied  = shared.NewDomainError("LEDGER_ACCESS_DENIED", "You do not have access to this ledger")
	ErrUserNotFound        = shared.NewDomainError("USER_NOT_FOUND", "User not found")
)
