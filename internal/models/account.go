package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountType describes what kind of account a record represents.
type AccountType string

const (
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeLoan       AccountType = "LOAN"
	AccountTypeMortgage   AccountType = "MORTGAGE"
)

// Account represents an account of a user, e.g. a bank account or a loan.
type Account struct {
	DefaultModel
	User    User      `json:"-"`
	UserID  uuid.UUID `json:"userId" gorm:"uniqueIndex:account_name_user_id"`
	Name    string    `json:"name" gorm:"uniqueIndex:account_name_user_id"`
	Type    AccountType
	Note    string
	Balance decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)"`
}

// BeforeSave ensures consistency for the account.
//
// It trims whitespace from all strings and defaults
// the type to a checking account.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	if a.Type == "" {
		a.Type = AccountTypeChecking
	}

	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)

	return nil
}

// ForUser loads the account with the given ID, scoped to the user owning it.
//
// An account belonging to another user is indistinguishable from a missing
// one so that account IDs cannot be probed across users.
func (a *Account) ForUser(db *gorm.DB, id uuid.UUID, userID uuid.UUID) error {
	return db.First(a, Account{DefaultModel: DefaultModel{ID: id}, UserID: userID}).Error
}

// IncrementBalance applies a signed delta to the stored account balance.
func (a *Account) IncrementBalance(db *gorm.DB, delta decimal.Decimal) error {
	a.Balance = a.Balance.Add(delta)
	return db.Model(a).Update("balance", a.Balance).Error
}

// Transactions returns all transactions for this account.
func (a Account) Transactions(db *gorm.DB) ([]Transaction, error) {
	var transactions []Transaction

	err := db.Where(Transaction{AccountID: a.ID}).Find(&transactions).Error
	return transactions, err
}
