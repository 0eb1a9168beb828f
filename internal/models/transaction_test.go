package models_test

import (
	"github.com/ledgerlane/backend/internal/models"
	"github.com/ledgerlane/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestTransactionDefaults() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	transaction := suite.createTestTransaction(models.Transaction{
		AccountID:   account.ID,
		Date:        types.NewDate(2026, 1, 15),
		Description: "  Coffee  ",
		Amount:      decimal.NewFromFloat(-5.5),
		Type:        models.TransactionTypeExpense,
	})

	suite.Assert().Equal("Coffee", transaction.Description)
	suite.Assert().Equal(models.TransactionSourceManual, transaction.Source)
}

func (suite *TestSuiteStandard) TestTransactionLinkUnique() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})
	loan := suite.createTestAccount(models.Account{UserID: user.ID, Type: models.AccountTypeLoan})

	principal := suite.createTestTransaction(models.Transaction{
		AccountID:   loan.ID,
		Date:        types.NewDate(2026, 1, 1),
		Description: "Loan principal",
		Amount:      decimal.NewFromFloat(350),
		Type:        models.TransactionTypeLoanPrincipal,
	})

	_ = suite.createTestTransaction(models.Transaction{
		AccountID:           account.ID,
		Date:                types.NewDate(2026, 1, 1),
		Description:         "Loan payment",
		Amount:              decimal.NewFromFloat(-350),
		Type:                models.TransactionTypeTransfer,
		LinkedTransactionID: &principal.ID,
	})

	// A second transaction claiming the same link target is rejected
	err := models.DB.Create(&models.Transaction{
		AccountID:           account.ID,
		Date:                types.NewDate(2026, 1, 2),
		Description:         "Duplicate link",
		Amount:              decimal.NewFromFloat(-350),
		Type:                models.TransactionTypeTransfer,
		LinkedTransactionID: &principal.ID,
	}).Error
	suite.Assert().ErrorIs(err, models.ErrTransactionAlreadyLinked)
}

func (suite *TestSuiteStandard) TestTransactionLinkToSelf() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	transaction := suite.createTestTransaction(models.Transaction{
		AccountID:   account.ID,
		Date:        types.NewDate(2026, 1, 15),
		Description: "Transfer",
		Amount:      decimal.NewFromFloat(-10),
		Type:        models.TransactionTypeTransfer,
	})

	transaction.LinkedTransactionID = &transaction.ID
	err := models.DB.Save(&transaction).Error
	suite.Assert().ErrorIs(err, models.ErrTransactionLinkedToSelf)
}
