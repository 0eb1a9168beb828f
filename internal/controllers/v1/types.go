package v1

import (
	"github.com/ledgerlane/backend/internal/importer"
	"github.com/ledgerlane/backend/internal/importer/csvfile"
	ez_uuid "github.com/ledgerlane/backend/internal/uuid"
)

type ImportQuery struct {
	AccountID ez_uuid.UUID `form:"accountId" binding:"required"` // ID of the account the import is for
}

type ParseResponse struct {
	Data  *csvfile.File `json:"data"`                                                   // The parsed file
	Error *string       `json:"error" example:"the file does not contain any usable rows"` // The error, if any occurred
}

type DetectRequest struct {
	Headers []string   `json:"headers" binding:"required"` // Header row of the statement
	Rows    [][]string `json:"rows"`                       // Sample rows used for amount pattern detection
}

type DetectResponse struct {
	Data  *importer.DetectedColumns `json:"data"`  // The detected column mapping
	Error *string                   `json:"error"` // The error, if any occurred
}

type PreviewRequest struct {
	Rows    [][]string             `json:"rows" binding:"required"` // Data rows of the statement
	Mapping importer.ColumnMapping `json:"mapping"`                 // The confirmed column mapping
}

type PreviewResponse struct {
	Data  []importer.Row `json:"data"`  // One row per import candidate
	Error *string        `json:"error"` // The error, if any occurred
}

type ImportRequest struct {
	Transactions []importer.NormalizedTransaction `json:"transactions"` // The candidates to import
}

type ReconcileRequest struct {
	Transactions []importer.NormalizedTransaction `json:"transactions"` // New candidates to import
	Reconcile    []importer.ReconcileItem         `json:"reconcile"`    // Confirmed reconciliation matches
}

type ResultResponse struct {
	Data  *importer.Result `json:"data"`  // Summary of the finished import
	Error *string          `json:"error"` // The error, if any occurred
}
