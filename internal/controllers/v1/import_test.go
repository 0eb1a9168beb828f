package v1_test

import (
	"encoding/json"
	"fmt"
	"net/http"

	v1 "github.com/ledgerlane/backend/internal/controllers/v1"
	"github.com/ledgerlane/backend/internal/importer"
	"github.com/ledgerlane/backend/internal/models"
	"github.com/ledgerlane/backend/internal/types"
	"github.com/ledgerlane/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) decode(body string, target any) {
	err := json.Unmarshal([]byte(body), target)
	if err != nil {
		suite.Assert().FailNow("Response could not be decoded", "Error: %s, Body: %s", err, body)
	}
}

func (suite *TestSuiteStandard) TestOptions() {
	tests := []struct {
		path    string
		allowed string
	}{
		{"/v1/import", "OPTIONS, GET"},
		{"/v1/import/parse", "OPTIONS, POST"},
		{"/v1/import/detect", "OPTIONS, POST"},
		{"/v1/import/preview", "OPTIONS, POST"},
		{"/v1/import/transactions", "OPTIONS, POST"},
		{"/v1/import/reconcile", "OPTIONS, POST"},
	}

	for _, tt := range tests {
		suite.Run(tt.path, func() {
			recorder := test.Request(suite.T(), http.MethodOptions, tt.path, nil)

			suite.Assert().Equal(http.StatusNoContent, recorder.Code)
			suite.Assert().Equal(tt.allowed, recorder.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestGetImport() {
	recorder := test.Request(suite.T(), http.MethodGet, "/v1/import", nil)

	suite.Assert().Equal(http.StatusOK, recorder.Code)
	suite.Assert().JSONEq(`{
		"links": {
			"parse": "http://example.com/v1/import/parse",
			"detect": "http://example.com/v1/import/detect",
			"preview": "http://example.com/v1/import/preview",
			"transactions": "http://example.com/v1/import/transactions",
			"reconcile": "http://example.com/v1/import/reconcile"
		}
	}`, recorder.Body.String())
}

func (suite *TestSuiteStandard) TestParse() {
	body, headers := test.MultipartFile(suite.T(), "statement.csv", "Date,Description,Amount\n2026-01-15,COFFEE SHOP #42,-5.50\n")

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/parse", body, headers)
	suite.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.ParseResponse
	suite.decode(recorder.Body.String(), &response)

	suite.Require().NotNil(response.Data)
	suite.Assert().Equal([]string{"Date", "Description", "Amount"}, response.Data.Headers)
	suite.Assert().Equal([][]string{{"2026-01-15", "COFFEE SHOP #42", "-5.50"}}, response.Data.Rows)
}

func (suite *TestSuiteStandard) TestParseEmptyFile() {
	body, headers := test.MultipartFile(suite.T(), "statement.csv", "Date,Description,Amount\n")

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/parse", body, headers)
	suite.Assert().Equal(http.StatusBadRequest, recorder.Code)

	var response v1.ParseResponse
	suite.decode(recorder.Body.String(), &response)
	suite.Require().NotNil(response.Error)
	suite.Assert().Equal("the file does not contain any usable rows", *response.Error)
}

func (suite *TestSuiteStandard) TestParseNoFile() {
	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/parse", nil)
	suite.Assert().Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestParseWrongSuffix() {
	body, headers := test.MultipartFile(suite.T(), "statement.txt", "Date,Description,Amount\n2026-01-15,COFFEE,-5.50\n")

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/parse", body, headers)
	suite.Assert().Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestDetect() {
	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/detect", v1.DetectRequest{
		Headers: []string{"Date", "Description", "Amount"},
	})
	suite.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.DetectResponse
	suite.decode(recorder.Body.String(), &response)

	suite.Require().NotNil(response.Data)
	suite.Require().NotNil(response.Data.DateColumn)
	suite.Assert().Equal(0, *response.Data.DateColumn)
	suite.Require().NotNil(response.Data.DescriptionColumn)
	suite.Assert().Equal(1, *response.Data.DescriptionColumn)
	suite.Assert().Equal(importer.SinglePattern{AmountColumn: 2}, response.Data.Pattern)
}

func (suite *TestSuiteStandard) TestDetectEmptyBody() {
	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/detect", "")
	suite.Assert().Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestPreviewUnauthorized() {
	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/preview", "")
	suite.Assert().Equal(http.StatusUnauthorized, recorder.Code)
}

func (suite *TestSuiteStandard) TestPreviewUnknownToken() {
	headers := map[string]string{"Authorization": "Bearer not-a-known-token"}

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/preview", "", headers)
	suite.Assert().Equal(http.StatusUnauthorized, recorder.Code)
}

func (suite *TestSuiteStandard) TestPreviewInvalidAccountID() {
	user := suite.createTestUser(models.User{})

	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/preview?accountId=not-a-uuid", "", bearer(user))
	suite.Assert().Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestPreview() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	suite.createTestTransaction(models.Transaction{
		AccountID:   account.ID,
		Date:        types.NewDate(2026, 1, 15),
		Description: "COFFEE SHOP #42",
		Amount:      decimal.RequireFromString("-5.5"),
		Type:        models.TransactionTypeExpense,
	})

	request := v1.PreviewRequest{
		Rows: [][]string{
			{"2026-01-15", "COFFEE SHOP #42", "-5.50"},
			{"2026-01-16", "PETROL STATION", "-40.00"},
		},
		Mapping: importer.ColumnMapping{
			DateColumn:        0,
			DescriptionColumn: 1,
			Pattern:           importer.SinglePattern{AmountColumn: 2},
		},
	}

	path := fmt.Sprintf("/v1/import/preview?accountId=%s", account.ID)
	recorder := test.Request(suite.T(), http.MethodPost, path, request, bearer(user))
	suite.Require().Equal(http.StatusOK, recorder.Code, recorder.Body.String())

	var response v1.PreviewResponse
	suite.decode(recorder.Body.String(), &response)

	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal(importer.StatusDuplicate, response.Data[0].Status)
	suite.Assert().False(response.Data[0].Selected)
	suite.Assert().Equal(importer.StatusNew, response.Data[1].Status)
	suite.Assert().True(response.Data[1].Selected)
}

func (suite *TestSuiteStandard) TestTransactionsUnauthorized() {
	recorder := test.Request(suite.T(), http.MethodPost, "/v1/import/transactions", "")
	suite.Assert().Equal(http.StatusUnauthorized, recorder.Code)
}

func (suite *TestSuiteStandard) TestTransactionsForeignAccount() {
	user := suite.createTestUser(models.User{})
	other := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: other.ID})

	request := v1.ImportRequest{
		Transactions: []importer.NormalizedTransaction{
			{Date: types.NewDate(2026, 1, 15), Description: "COFFEE", Amount: decimal.RequireFromString("-5.5")},
		},
	}

	path := fmt.Sprintf("/v1/import/transactions?accountId=%s", account.ID)
	recorder := test.Request(suite.T(), http.MethodPost, path, request, bearer(user))
	suite.Assert().Equal(http.StatusNotFound, recorder.Code)
}

func (suite *TestSuiteStandard) TestTransactionsEmpty() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	path := fmt.Sprintf("/v1/import/transactions?accountId=%s", account.ID)
	recorder := test.Request(suite.T(), http.MethodPost, path, v1.ImportRequest{}, bearer(user))
	suite.Assert().Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestTransactions() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{
		UserID:  user.ID,
		Balance: decimal.RequireFromString("500"),
	})

	request := v1.ImportRequest{
		Transactions: []importer.NormalizedTransaction{
			{Date: types.NewDate(2026, 1, 15), Description: "COFFEE", Amount: decimal.RequireFromString("-5.5")},
			{Date: types.NewDate(2026, 1, 16), Description: "REFUND", Amount: decimal.RequireFromString("10")},
		},
	}

	path := fmt.Sprintf("/v1/import/transactions?accountId=%s", account.ID)
	recorder := test.Request(suite.T(), http.MethodPost, path, request, bearer(user))
	suite.Require().Equal(http.StatusCreated, recorder.Code, recorder.Body.String())

	var response v1.ResultResponse
	suite.decode(recorder.Body.String(), &response)

	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(2, response.Data.Imported)
	suite.Assert().True(response.Data.NewBalance.Equal(decimal.RequireFromString("504.5")), response.Data.NewBalance.String())
}

func (suite *TestSuiteStandard) TestReconcileEmpty() {
	user := suite.createTestUser(models.User{})
	account := suite.createTestAccount(models.Account{UserID: user.ID})

	path := fmt.Sprintf("/v1/import/reconcile?accountId=%s", account.ID)
	recorder := test.Request(suite.T(), http.MethodPost, path, v1.ReconcileRequest{}, bearer(user))
	suite.Assert().Equal(http.StatusBadRequest, recorder.Code)
}

func (suite *TestSuiteStandard) TestReconcile() {
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

	request := v1.ReconcileRequest{
		Reconcile: []importer.ReconcileItem{
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
		},
	}

	path := fmt.Sprintf("/v1/import/reconcile?accountId=%s", account.ID)
	recorder := test.Request(suite.T(), http.MethodPost, path, request, bearer(user))
	suite.Require().Equal(http.StatusCreated, recorder.Code, recorder.Body.String())

	var response v1.ResultResponse
	suite.decode(recorder.Body.String(), &response)

	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(1, response.Data.Reconciled)
	suite.Assert().True(response.Data.NewBalance.Equal(decimal.RequireFromString("1001.65")), response.Data.NewBalance.String())
}
