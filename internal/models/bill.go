package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerlane/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bill represents a recurring bill of a user.
//
// A variable bill is one whose exact charge is not known until billed,
// e.g. a utility bill. Its payments carry an estimate until an imported
// bank transaction confirms the real amount.
type Bill struct {
	DefaultModel
	User       User      `json:"-"`
	UserID     uuid.UUID `json:"userId"`
	Name       string
	IsVariable bool
}

// BeforeSave trims whitespace from all strings.
func (b *Bill) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)

	return nil
}

// BillPayment represents a single due payment of a recurring bill.
//
// When the payment has been booked, TransactionID references the ledger
// transaction that paid it. Reconciliation repoints this reference from a
// manually created placeholder to the imported bank transaction.
type BillPayment struct {
	DefaultModel
	Bill          Bill      `json:"-"`
	BillID        uuid.UUID `json:"billId"`
	DueDate       types.Date
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Transaction   *Transaction    `json:"-"`
	TransactionID *uuid.UUID      `json:"transactionId"`
}
