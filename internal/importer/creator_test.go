package importer_test

import (
	"github.com/google/uuid"
	"github.com/ledgerlane/backend/internal/importer"
	"github.com/ledgerlane/backend/internal/models"
	"github.com/ledgerlane/backend/internal/types"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestImportTransactionsUnauthorized() {
	_, err := importer.ImportTransactions(models.DB, uuid.Nil, uuid.New(), nil)
	suite.Assert().ErrorIs(err, importer.ErrUnauthorized)
}

func (suite *TestSuiteStandard) TestImportTransactionsForeignAccount() {
	owner := suite.createTestUser(models.User{})
	intruder := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: owner.ID})

	_, err := importer.ImportTransactions(models.DB, intruder.ID, account.ID, []importer.NormalizedTransaction{
		{Date: types.NewDate(2026, 1, 15), Description: "COFFEE", Amount: decimal.RequireFromString("-5.5")},
	})
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestImportTransactionsEmpty() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	_, err := importer.ImportTransactions(models.DB, user.ID, account.ID, nil)
	suite.Assert().ErrorIs(err, importer.ErrNoTransactions)
}

func (suite *TestSuiteStandard) TestImportTransactions() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{
		UserID:  user.ID,
		Balance: decimal.RequireFromString("500"),
	})

	result, err := importer.ImportTransactions(models.DB, user.ID, account.ID, []importer.NormalizedTransaction{
		{Date: types.NewDate(2026, 1, 15), Description: "COFFEE", Amount: decimal.RequireFromString("-5.5"), Category: "Dining"},
		{Date: types.NewDate(2026, 1, 16), Description: "REFUND", Amount: decimal.RequireFromString("10")},
	})
	suite.Require().Nil(err)

	suite.Assert().Equal(2, result.Imported)
	suite.Assert().Equal(0, result.Reconciled)
	suite.Assert().True(result.NewBalance.Equal(decimal.RequireFromString("504.5")), result.NewBalance.String())

	transactions, err := account.Transactions(models.DB)
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 2)

	suite.Assert().Equal(models.TransactionTypeExpense, transactions[0].Type)
	suite.Assert().Equal(models.TransactionSourceImport, transactions[0].Source)
	suite.Assert().Equal("Dining", transactions[0].Category)
	suite.Assert().Equal(models.TransactionTypeIncome, transactions[1].Type)
	suite.Assert().Equal(models.TransactionSourceImport, transactions[1].Source)

	var reloaded models.Account
	suite.Require().Nil(reloaded.ForUser(models.DB, account.ID, user.ID))
	suite.Assert().True(reloaded.Balance.Equal(decimal.RequireFromString("504.5")), reloaded.Balance.String())
}

func (suite *TestSuiteStandard) TestImportAndReconcileEmpty() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	_, err := importer.ImportAndReconcile(models.DB, user.ID, account.ID, nil, nil)
	suite.Assert().ErrorIs(err, importer.ErrNoTransactions)
}

func (suite *TestSuiteStandard) TestImportAndReconcileBill() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{
		UserID:  user.ID,
		Balance: decimal.RequireFromString("1000"),
	})
	bill := suite.createTestBill(models.Bill{UserID: user.ID, Name: "Electric"})

	placeholder := suite.createTestTransaction(models.Transaction{
		AccountID:   account.ID,
		Date:        types.NewDate(2026, 1, 10),
		Description: "Electric (estimated)",
		Amount:      decimal.RequireFromString("-120"),
		Type:        models.TransactionTypeExpense,
	})
	payment := suite.createTestBillPayment(models.BillPayment{
		BillID:        bill.ID,
		DueDate:       types.NewDate(2026, 1, 10),
		Amount:        decimal.RequireFromString("120"),
		TransactionID: &placeholder.ID,
	})

	result, err := importer.ImportAndReconcile(models.DB, user.ID, account.ID, nil, []importer.ReconcileItem{
		{
			Transaction: importer.NormalizedTransaction{
				Date:        types.NewDate(2026, 1, 12),
				Description: "CITY POWER CO",
				Amount:      decimal.RequireFromString("-118.35"),
			},
			Match: importer.ReconcileMatch{
				TransactionID: placeholder.ID,
				BillPaymentID: &payment.ID,
				BillName:      bill.Name,
				Type:          importer.ReconcileTypeBill,
			},
		},
	})
	suite.Require().Nil(err)

	suite.Assert().Equal(0, result.Imported)
	suite.Assert().Equal(1, result.Reconciled)

	// The estimate was 120, the real charge 118.35
	suite.Assert().True(result.NewBalance.Equal(decimal.RequireFromString("1001.65")), result.NewBalance.String())

	// The placeholder is gone, the imported transaction replaces it
	transactions, err := account.Transactions(models.DB)
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 1)
	suite.Assert().Equal("CITY POWER CO", transactions[0].Description)
	suite.Assert().Equal(models.TransactionSourceImport, transactions[0].Source)

	// The bill payment now references the imported transaction
	var reloaded models.BillPayment
	suite.Require().Nil(models.DB.First(&reloaded, payment.ID).Error)
	suite.Require().NotNil(reloaded.TransactionID)
	suite.Assert().Equal(transactions[0].ID, *reloaded.TransactionID)
}

func (suite *TestSuiteStandard) TestImportAndReconcileLoanTransfer() {
	user := suite.createTestUser(models.User{})
	checking := suite.createTestAccount(models.Account{
		UserID:  user.ID,
		Name:    "Checking",
		Balance: decimal.RequireFromString("2000"),
	})
	loan := suite.createTestAccount(models.Account{UserID: user.ID, Name: "Car Loan", Type: models.AccountTypeLoan})

	principal := suite.createTestTransaction(models.Transaction{
		AccountID:   loan.ID,
		Date:        types.NewDate(2026, 1, 20),
		Description: "Car Loan payment",
		Amount:      decimal.RequireFromString("350"),
		Type:        models.TransactionTypeLoanPrincipal,
	})
	transfer := suite.createTestTransaction(models.Transaction{
		AccountID:           checking.ID,
		Date:                types.NewDate(2026, 1, 20),
		Description:         "Car Loan payment",
		Amount:              decimal.RequireFromString("-350"),
		Type:                models.TransactionTypeTransfer,
		LinkedTransactionID: &principal.ID,
	})

	result, err := importer.ImportAndReconcile(models.DB, user.ID, checking.ID, nil, []importer.ReconcileItem{
		{
			Transaction: importer.NormalizedTransaction{
				Date:        types.NewDate(2026, 1, 22),
				Description: "AUTO FINANCE CO",
				Amount:      decimal.RequireFromString("-350"),
			},
			Match: importer.ReconcileMatch{
				TransactionID:       transfer.ID,
				BillName:            loan.Name,
				Type:                importer.ReconcileTypeLoan,
				LinkedTransactionID: &principal.ID,
			},
		},
	})
	suite.Require().Nil(err)

	// Swapping a transfer leg for an equal one does not move the balance
	suite.Assert().Equal(1, result.Reconciled)
	suite.Assert().True(result.NewBalance.Equal(decimal.RequireFromString("2000")), result.NewBalance.String())

	transactions, err := checking.Transactions(models.DB)
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 1)

	imported := transactions[0]
	suite.Assert().Equal("AUTO FINANCE CO", imported.Description)
	suite.Assert().Equal(models.TransactionTypeTransfer, imported.Type)
	suite.Assert().Equal(models.TransactionSourceImport, imported.Source)
	suite.Require().NotNil(imported.LinkedTransactionID)
	suite.Assert().Equal(principal.ID, *imported.LinkedTransactionID)

	// The loan side now links back to the imported leg
	var reloaded models.Transaction
	suite.Require().Nil(models.DB.First(&reloaded, principal.ID).Error)
	suite.Require().NotNil(reloaded.LinkedTransactionID)
	suite.Assert().Equal(imported.ID, *reloaded.LinkedTransactionID)
}

func (suite *TestSuiteStandard) TestImportAndReconcileMixed() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{
		UserID:  user.ID,
		Balance: decimal.RequireFromString("100"),
	})
	bill := suite.createTestBill(models.Bill{UserID: user.ID, Name: "Internet"})

	placeholder := suite.createTestTransaction(models.Transaction{
		AccountID:   account.ID,
		Date:        types.NewDate(2026, 1, 5),
		Description: "Internet (estimated)",
		Amount:      decimal.RequireFromString("-50"),
		Type:        models.TransactionTypeExpense,
	})
	payment := suite.createTestBillPayment(models.BillPayment{
		BillID:        bill.ID,
		DueDate:       types.NewDate(2026, 1, 5),
		Amount:        decimal.RequireFromString("50"),
		TransactionID: &placeholder.ID,
	})

	result, err := importer.ImportAndReconcile(models.DB, user.ID, account.ID,
		[]importer.NormalizedTransaction{
			{Date: types.NewDate(2026, 1, 15), Description: "COFFEE", Amount: decimal.RequireFromString("-5.5")},
		},
		[]importer.ReconcileItem{
			{
				Transaction: importer.NormalizedTransaction{
					Date:        types.NewDate(2026, 1, 6),
					Description: "ISP AUTOPAY",
					Amount:      decimal.RequireFromString("-50"),
				},
				Match: importer.ReconcileMatch{
					TransactionID: placeholder.ID,
					BillPaymentID: &payment.ID,
					BillName:      bill.Name,
					Type:          importer.ReconcileTypeBill,
				},
			},
		},
	)
	suite.Require().Nil(err)

	suite.Assert().Equal(1, result.Imported)
	suite.Assert().Equal(1, result.Reconciled)

	// -5.5 for the new expense, the reconciled amount matched the estimate
	suite.Assert().True(result.NewBalance.Equal(decimal.RequireFromString("94.5")), result.NewBalance.String())

	transactions, err := account.Transactions(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Len(transactions, 2)
}

func (suite *TestSuiteStandard) TestImportAndReconcileUnknownType() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	_, err := importer.ImportAndReconcile(models.DB, user.ID, account.ID, nil, []importer.ReconcileItem{
		{
			Transaction: importer.NormalizedTransaction{
				Date:        types.NewDate(2026, 1, 6),
				Description: "MYSTERY",
				Amount:      decimal.RequireFromString("-1"),
			},
			Match: importer.ReconcileMatch{TransactionID: uuid.New(), Type: "mystery"},
		},
	})
	suite.Assert().NotNil(err)
}
