package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerlane/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType describes the ledger meaning of a transaction.
type TransactionType string

const (
	TransactionTypeExpense       TransactionType = "EXPENSE"
	TransactionTypeIncome        TransactionType = "INCOME"
	TransactionTypeTransfer      TransactionType = "TRANSFER"
	TransactionTypeLoanPrincipal TransactionType = "LOAN_PRINCIPAL"
)

// TransactionSource describes how a transaction entered the system.
type TransactionSource string

const (
	TransactionSourceManual TransactionSource = "MANUAL"
	TransactionSourceImport TransactionSource = "IMPORT"
)

// Transaction represents a single ledger entry on an account.
//
// Amounts are signed: negative amounts are debits (money leaving the
// account), positive amounts are credits.
type Transaction struct {
	DefaultModel
	Account     Account   `json:"-"`
	AccountID   uuid.UUID `json:"accountId"`
	Date        types.Date
	Description string
	Category    string
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Type        TransactionType
	Source      TransactionSource

	// The other leg of a transfer pair. A transaction can be the link
	// target of at most one other transaction.
	LinkedTransaction   *Transaction `json:"-"`
	LinkedTransactionID *uuid.UUID   `json:"linkedTransactionId" gorm:"uniqueIndex"`
}

// BeforeSave ensures consistency for the transaction.
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	if t.Source == "" {
		t.Source = TransactionSourceManual
	}

	if t.LinkedTransactionID != nil && *t.LinkedTransactionID == t.ID {
		return ErrTransactionLinkedToSelf
	}

	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)

	return nil
}
