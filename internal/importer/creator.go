package importer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerlane/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImportTransactions persists the selected candidates on the account and
// adjusts its balance.
//
// All inserts and the balance increment run in one database transaction:
// either the whole batch commits or nothing does.
func ImportTransactions(db *gorm.DB, userID uuid.UUID, accountID uuid.UUID, candidates []NormalizedTransaction) (Result, error) {
	if userID == uuid.Nil {
		return Result{}, ErrUnauthorized
	}

	var account models.Account
	if err := account.ForUser(db, accountID, userID); err != nil {
		return Result{}, err
	}

	if len(candidates) == 0 {
		return Result{}, ErrNoTransactions
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		delta, err := createImported(tx, account.ID, candidates)
		if err != nil {
			return err
		}

		return account.IncrementBalance(tx, delta.Round(2))
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Imported:   len(candidates),
		NewBalance: account.Balance,
	}, nil
}

// ImportAndReconcile persists new candidates and replaces the existing
// placeholder records of the confirmed reconciliation matches.
//
// Bill reconciliations repoint the bill payment to the imported
// transaction and adjust the balance by the difference between the
// imported and the replaced amount. Loan and credit card reconciliations
// swap one transfer leg for an equal one and are balance neutral.
func ImportAndReconcile(db *gorm.DB, userID uuid.UUID, accountID uuid.UUID, candidates []NormalizedTransaction, items []ReconcileItem) (Result, error) {
	if userID == uuid.Nil {
		return Result{}, ErrUnauthorized
	}

	var account models.Account
	if err := account.ForUser(db, accountID, userID); err != nil {
		return Result{}, err
	}

	if len(candidates) == 0 && len(items) == 0 {
		return Result{}, ErrNoTransactions
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		delta, err := createImported(tx, account.ID, candidates)
		if err != nil {
			return err
		}

		for _, item := range items {
			reconcileDelta, err := reconcile(tx, account.ID, item)
			if err != nil {
				return err
			}

			delta = delta.Add(reconcileDelta)
		}

		return account.IncrementBalance(tx, delta.Round(2))
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Imported:   len(candidates),
		Reconciled: len(items),
		NewBalance: account.Balance,
	}, nil
}

// createImported bulk-creates one ledger transaction per candidate and
// returns the sum of their amounts.
func createImported(tx *gorm.DB, accountID uuid.UUID, candidates []NormalizedTransaction) (decimal.Decimal, error) {
	delta := decimal.Zero
	if len(candidates) == 0 {
		return delta, nil
	}

	transactions := make([]models.Transaction, 0, len(candidates))
	for _, candidate := range candidates {
		transactions = append(transactions, newImported(accountID, candidate))
		delta = delta.Add(candidate.Amount)
	}

	if err := tx.Create(&transactions).Error; err != nil {
		return decimal.Zero, err
	}

	return delta, nil
}

// newImported builds the ledger transaction for an import candidate.
func newImported(accountID uuid.UUID, candidate NormalizedTransaction) models.Transaction {
	transactionType := models.TransactionTypeIncome
	if candidate.Amount.IsNegative() {
		transactionType = models.TransactionTypeExpense
	}

	return models.Transaction{
		AccountID:   accountID,
		Date:        candidate.Date,
		Description: candidate.Description,
		Category:    candidate.Category,
		Amount:      candidate.Amount,
		Type:        transactionType,
		Source:      models.TransactionSourceImport,
	}
}

// reconcile replaces the placeholder record of one reconciliation match
// with the imported transaction and returns the balance delta.
func reconcile(tx *gorm.DB, accountID uuid.UUID, item ReconcileItem) (decimal.Decimal, error) {
	switch item.Match.Type {
	case ReconcileTypeBill:
		return reconcileBill(tx, accountID, item)
	case ReconcileTypeLoan, ReconcileTypeCreditCard:
		return decimal.Zero, reconcileTransfer(tx, accountID, item)
	}

	return decimal.Zero, fmt.Errorf("unknown reconciliation type %q", item.Match.Type)
}

// reconcileBill creates the imported transaction, repoints the bill
// payment to it and removes the replaced placeholder.
func reconcileBill(tx *gorm.DB, accountID uuid.UUID, item ReconcileItem) (decimal.Decimal, error) {
	if item.Match.BillPaymentID == nil {
		return decimal.Zero, fmt.Errorf("bill reconciliation for transaction %s is missing the bill payment", item.Match.TransactionID)
	}

	var replaced models.Transaction
	if err := tx.First(&replaced, item.Match.TransactionID).Error; err != nil {
		return decimal.Zero, err
	}

	imported := newImported(accountID, item.Transaction)
	if err := tx.Create(&imported).Error; err != nil {
		return decimal.Zero, err
	}

	err := tx.Model(&models.BillPayment{}).
		Where("id = ?", *item.Match.BillPaymentID).
		Update("transaction_id", imported.ID).Error
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Delete(&replaced).Error; err != nil {
		return decimal.Zero, err
	}

	// The placeholder carried an estimate, the bank amount is the truth
	return item.Transaction.Amount.Sub(replaced.Amount), nil
}

// reconcileTransfer swaps the manually created transfer leg for the
// imported one and relinks both sides.
//
// The links are cleared before the old leg is deleted: soft-deleted rows
// keep their values, so a dangling link would collide with the unique
// index on the link column.
func reconcileTransfer(tx *gorm.DB, accountID uuid.UUID, item ReconcileItem) error {
	if item.Match.LinkedTransactionID == nil {
		return fmt.Errorf("transfer reconciliation for transaction %s is missing the linked transaction", item.Match.TransactionID)
	}
	partnerID := *item.Match.LinkedTransactionID

	var replaced models.Transaction
	if err := tx.First(&replaced, item.Match.TransactionID).Error; err != nil {
		return err
	}

	var partner models.Transaction
	if err := tx.First(&partner, partnerID).Error; err != nil {
		return err
	}

	// Unlink both sides first
	err := tx.Model(&replaced).Update("linked_transaction_id", nil).Error
	if err != nil {
		return err
	}

	err = tx.Model(&partner).Update("linked_transaction_id", nil).Error
	if err != nil {
		return err
	}

	if err := tx.Delete(&replaced).Error; err != nil {
		return err
	}

	imported := newImported(accountID, item.Transaction)
	imported.Type = models.TransactionTypeTransfer
	imported.LinkedTransactionID = &partnerID
	if err := tx.Create(&imported).Error; err != nil {
		return err
	}

	return tx.Model(&partner).Update("linked_transaction_id", imported.ID).Error
}
