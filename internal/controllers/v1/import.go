// Package v1 implements the HTTP endpoints for the statement import
// pipeline.
package v1

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ledgerlane/backend/internal/httputil"
	"github.com/ledgerlane/backend/internal/importer"
	"github.com/ledgerlane/backend/internal/importer/csvfile"
	"github.com/ledgerlane/backend/internal/models"
	ez_uuid "github.com/ledgerlane/backend/internal/uuid"
)

// RegisterImportRoutes registers the routes for imports.
func RegisterImportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsImport)
	r.GET("", GetImport)

	r.OPTIONS("/parse", OptionsParse)
	r.POST("/parse", Parse)

	r.OPTIONS("/detect", OptionsDetect)
	r.POST("/detect", Detect)

	r.OPTIONS("/preview", OptionsPreview)
	r.POST("/preview", Preview)

	r.OPTIONS("/transactions", OptionsTransactions)
	r.POST("/transactions", Transactions)

	r.OPTIONS("/reconcile", OptionsReconcile)
	r.POST("/reconcile", Reconcile)
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, errNoFilePost
	}

	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(formFile.Filename, suffix) {
		return nil, fmt.Errorf("%w: %s", errWrongFileSuffix, suffix)
	}

	f, err := formFile.Open()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// importQuery binds and validates the accountId query parameter.
func importQuery(c *gin.Context) (ez_uuid.UUID, error) {
	var query ImportQuery
	if err := c.BindQuery(&query); err != nil {
		return ez_uuid.Nil, fmt.Errorf("accountId: %w", err)
	}

	if query.AccountID == ez_uuid.Nil {
		return ez_uuid.Nil, errAccountIDParameter
	}

	return query.AccountID, nil
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs.
// @Tags			Import
// @Success		204
// @Router			/v1/import [options]
func OptionsImport(c *gin.Context) {
	httputil.OptionsGet(c)
}

type ImportResponse struct {
	Links ImportLinks `json:"links"` // Links for the v1 import API
}

type ImportLinks struct {
	Parse        string `json:"parse" example:"https://example.com/api/v1/import/parse"`               // URL of the CSV parse endpoint
	Detect       string `json:"detect" example:"https://example.com/api/v1/import/detect"`             // URL of the column detection endpoint
	Preview      string `json:"preview" example:"https://example.com/api/v1/import/preview"`           // URL of the duplicate preview endpoint
	Transactions string `json:"transactions" example:"https://example.com/api/v1/import/transactions"` // URL of the import endpoint
	Reconcile    string `json:"reconcile" example:"https://example.com/api/v1/import/reconcile"`       // URL of the import and reconcile endpoint
}

// @Summary		Import API overview
// @Description	Returns general information about the import API
// @Tags			Import
// @Success		200	{object}	ImportResponse
// @Router			/v1/import [get]
func GetImport(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL)) + "/v1/import"

	c.JSON(http.StatusOK, ImportResponse{
		Links: ImportLinks{
			Parse:        url + "/parse",
			Detect:       url + "/detect",
			Preview:      url + "/preview",
			Transactions: url + "/transactions",
			Reconcile:    url + "/reconcile",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/parse [options]
func OptionsParse(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Parse CSV statement
// @Description	Parses an uploaded CSV bank statement into a header row and data rows
// @Tags			Import
// @Accept			multipart/form-data
// @Produce		json
// @Success		200		{object}	ParseResponse
// @Failure		400		{object}	ParseResponse
// @Param			file	formData	file	true	"File to parse"
// @Router			/v1/import/parse [post]
func Parse(c *gin.Context) {
	f, err := getUploadedFile(c, ".csv")
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ParseResponse{Error: &s})
		return
	}

	content, err := io.ReadAll(f)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ParseResponse{Error: &s})
		return
	}

	file, err := csvfile.Parse(string(content))
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ParseResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, ParseResponse{Data: &file})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/detect [options]
func OptionsDetect(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Detect columns
// @Description	Guesses the column mapping and amount pattern for a parsed statement. Can be called repeatedly while the user adjusts the mapping.
// @Tags			Import
// @Produce		json
// @Success		200		{object}	DetectResponse
// @Failure		400		{object}	DetectResponse
// @Param			request	body		DetectRequest	true	"Headers and sample rows"
// @Router			/v1/import/detect [post]
func Detect(c *gin.Context) {
	var request DetectRequest
	if err := httputil.BindData(c, &request); err != nil {
		s := err.Error()
		c.JSON(status(err), DetectResponse{Error: &s})
		return
	}

	detected := importer.DetectColumns(request.Headers, request.Rows)
	c.JSON(http.StatusOK, DetectResponse{Data: &detected})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/preview [options]
func OptionsPreview(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Import preview
// @Description	Normalizes statement rows with the confirmed mapping and classifies each candidate against the existing transactions of the account
// @Tags			Import
// @Produce		json
// @Success		200			{object}	PreviewResponse
// @Failure		400			{object}	PreviewResponse
// @Failure		401			{object}	PreviewResponse
// @Failure		404			{object}	PreviewResponse
// @Failure		500			{object}	PreviewResponse
// @Param			accountId	query		string			true	"ID of the account the import is for"
// @Param			request		body		PreviewRequest	true	"Rows and column mapping"
// @Router			/v1/import/preview [post]
func Preview(c *gin.Context) {
	user, err := resolveUser(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PreviewResponse{Error: &s})
		return
	}

	accountID, err := importQuery(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, PreviewResponse{Error: &s})
		return
	}

	var request PreviewRequest
	if err := httputil.BindData(c, &request); err != nil {
		s := err.Error()
		c.JSON(status(err), PreviewResponse{Error: &s})
		return
	}

	candidates := importer.NormalizeAmounts(request.Rows, request.Mapping)

	rows, err := importer.DetectDuplicates(models.DB, user.ID, accountID.UUID, candidates)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PreviewResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{Data: rows})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/transactions [options]
func OptionsTransactions(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Import transactions
// @Description	Imports the selected candidates into the account and adjusts its balance. All inserts happen in one database transaction.
// @Tags			Import
// @Produce		json
// @Success		201			{object}	ResultResponse
// @Failure		400			{object}	ResultResponse
// @Failure		401			{object}	ResultResponse
// @Failure		404			{object}	ResultResponse
// @Failure		500			{object}	ResultResponse
// @Param			accountId	query		string			true	"ID of the account the import is for"
// @Param			request		body		ImportRequest	true	"Candidates to import"
// @Router			/v1/import/transactions [post]
func Transactions(c *gin.Context) {
	user, err := resolveUser(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ResultResponse{Error: &s})
		return
	}

	accountID, err := importQuery(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ResultResponse{Error: &s})
		return
	}

	var request ImportRequest
	if err := httputil.BindData(c, &request); err != nil {
		s := err.Error()
		c.JSON(status(err), ResultResponse{Error: &s})
		return
	}

	result, err := importer.ImportTransactions(models.DB, user.ID, accountID.UUID, request.Transactions)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ResultResponse{Error: &s})
		return
	}

	c.JSON(http.StatusCreated, ResultResponse{Data: &result})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/reconcile [options]
func OptionsReconcile(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Import and reconcile transactions
// @Description	Imports new candidates and replaces the placeholder records of confirmed reconciliation matches in one database transaction.
// @Tags			Import
// @Produce		json
// @Success		201			{object}	ResultResponse
// @Failure		400			{object}	ResultResponse
// @Failure		401			{object}	ResultResponse
// @Failure		404			{object}	ResultResponse
// @Failure		500			{object}	ResultResponse
// @Param			accountId	query		string				true	"ID of the account the import is for"
// @Param			request		body		ReconcileRequest	true	"Candidates and confirmed matches"
// @Router			/v1/import/reconcile [post]
func Reconcile(c *gin.Context) {
	user, err := resolveUser(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ResultResponse{Error: &s})
		return
	}

	accountID, err := importQuery(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ResultResponse{Error: &s})
		return
	}

	var request ReconcileRequest
	if err := httputil.BindData(c, &request); err != nil {
		s := err.Error()
		c.JSON(status(err), ResultResponse{Error: &s})
		return
	}

	result, err := importer.ImportAndReconcile(models.DB, user.ID, accountID.UUID, request.Transactions, request.Reconcile)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ResultResponse{Error: &s})
		return
	}

	c.JSON(http.StatusCreated, ResultResponse{Data: &result})
}
