// Package importer implements the bank statement import pipeline:
// column detection, amount normalization, duplicate and reconciliation
// matching, and the atomic persistence of selected rows.
package importer

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ledgerlane/backend/internal/types"
	"github.com/shopspring/decimal"
)

// PatternType discriminates the amount pattern variants.
type PatternType string

const (
	PatternTypeSingle    PatternType = "single"
	PatternTypeSeparate  PatternType = "separate"
	PatternTypeIndicator PatternType = "indicator"
)

// AmountPattern describes how a statement encodes transaction amounts.
//
// Exactly one of the three variants is active for a mapping. The sealed
// interface keeps amount resolution exhaustive: normalization switches on
// the concrete type and the compiler flags a missing variant.
type AmountPattern interface {
	Type() PatternType
}

// SinglePattern is a statement with one signed amount column.
type SinglePattern struct {
	AmountColumn int `json:"amountColumn"`
}

func (SinglePattern) Type() PatternType { return PatternTypeSingle }

// SeparatePattern is a statement with independent debit and credit columns.
type SeparatePattern struct {
	DebitColumn  int `json:"debitColumn"`
	CreditColumn int `json:"creditColumn"`
}

func (SeparatePattern) Type() PatternType { return PatternTypeSeparate }

// IndicatorPattern is a statement with an unsigned amount column and a text
// flag column whose value identifies debits.
type IndicatorPattern struct {
	AmountColumn    int      `json:"amountColumn"`
	IndicatorColumn int      `json:"indicatorColumn"`
	DebitValues     []string `json:"debitValues"`
}

func (IndicatorPattern) Type() PatternType { return PatternTypeIndicator }

// patternJSON is the wire representation of an AmountPattern.
type patternJSON struct {
	Type            PatternType `json:"type" example:"single"`
	AmountColumn    *int        `json:"amountColumn,omitempty"`
	DebitColumn     *int        `json:"debitColumn,omitempty"`
	CreditColumn    *int        `json:"creditColumn,omitempty"`
	IndicatorColumn *int        `json:"indicatorColumn,omitempty"`
	DebitValues     []string    `json:"debitValues,omitempty"`
}

// MarshalPattern encodes an AmountPattern into its tagged JSON form.
func MarshalPattern(pattern AmountPattern) ([]byte, error) {
	if pattern == nil {
		return []byte("null"), nil
	}

	encoded := patternJSON{Type: pattern.Type()}
	switch p := pattern.(type) {
	case SinglePattern:
		encoded.AmountColumn = &p.AmountColumn
	case SeparatePattern:
		encoded.DebitColumn = &p.DebitColumn
		encoded.CreditColumn = &p.CreditColumn
	case IndicatorPattern:
		encoded.AmountColumn = &p.AmountColumn
		encoded.IndicatorColumn = &p.IndicatorColumn
		encoded.DebitValues = p.DebitValues
	default:
		return nil, fmt.Errorf("unknown amount pattern type %q", pattern.Type())
	}

	return json.Marshal(encoded)
}

// UnmarshalPattern decodes the tagged JSON form of an AmountPattern.
func UnmarshalPattern(data []byte) (AmountPattern, error) {
	if string(data) == "null" {
		return nil, nil
	}

	var decoded patternJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	column := func(c *int, name string) (int, error) {
		if c == nil {
			return 0, fmt.Errorf("amount pattern %q requires the %s column", decoded.Type, name)
		}
		return *c, nil
	}

	switch decoded.Type {
	case PatternTypeSingle:
		amount, err := column(decoded.AmountColumn, "amount")
		if err != nil {
			return nil, err
		}
		return SinglePattern{AmountColumn: amount}, nil
	case PatternTypeSeparate:
		debit, err := column(decoded.DebitColumn, "debit")
		if err != nil {
			return nil, err
		}
		credit, err := column(decoded.CreditColumn, "credit")
		if err != nil {
			return nil, err
		}
		return SeparatePattern{DebitColumn: debit, CreditColumn: credit}, nil
	case PatternTypeIndicator:
		amount, err := column(decoded.AmountColumn, "amount")
		if err != nil {
			return nil, err
		}
		indicator, err := column(decoded.IndicatorColumn, "indicator")
		if err != nil {
			return nil, err
		}
		return IndicatorPattern{AmountColumn: amount, IndicatorColumn: indicator, DebitValues: decoded.DebitValues}, nil
	}

	return nil, fmt.Errorf("unknown amount pattern type %q", decoded.Type)
}

// ColumnMapping assigns statement columns to transaction fields.
// It is confirmed by the user before normalization runs.
type ColumnMapping struct {
	DateColumn        int           `json:"dateColumn"`
	DescriptionColumn int           `json:"descriptionColumn"`
	CategoryColumn    *int          `json:"categoryColumn,omitempty"`
	Pattern           AmountPattern `json:"pattern"`
}

// columnMappingJSON mirrors ColumnMapping with the raw pattern for decoding.
type columnMappingJSON struct {
	DateColumn        int             `json:"dateColumn"`
	DescriptionColumn int             `json:"descriptionColumn"`
	CategoryColumn    *int            `json:"categoryColumn,omitempty"`
	Pattern           json.RawMessage `json:"pattern"`
}

// MarshalJSON implements the json.Marshaler interface.
func (m ColumnMapping) MarshalJSON() ([]byte, error) {
	pattern, err := MarshalPattern(m.Pattern)
	if err != nil {
		return nil, err
	}

	return json.Marshal(columnMappingJSON{
		DateColumn:        m.DateColumn,
		DescriptionColumn: m.DescriptionColumn,
		CategoryColumn:    m.CategoryColumn,
		Pattern:           pattern,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (m *ColumnMapping) UnmarshalJSON(data []byte) error {
	var decoded columnMappingJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	pattern, err := UnmarshalPattern(decoded.Pattern)
	if err != nil {
		return err
	}

	m.DateColumn = decoded.DateColumn
	m.DescriptionColumn = decoded.DescriptionColumn
	m.CategoryColumn = decoded.CategoryColumn
	m.Pattern = pattern
	return nil
}

// NormalizedTransaction is a statement row converted into a transaction
// candidate. It has not been persisted yet.
//
// Amount is signed and rounded to cents, and is never zero: rows that
// normalize to zero are dropped during normalization.
type NormalizedTransaction struct {
	Date        types.Date      `json:"date" example:"2026-01-15"`
	Description string          `json:"description" example:"COFFEE SHOP #42"`
	Amount      decimal.Decimal `json:"amount" example:"-5.5"`
	Category    string          `json:"category,omitempty" example:"Dining"`
}

// DuplicateStatus classifies an import candidate against existing data.
type DuplicateStatus string

const (
	StatusNew       DuplicateStatus = "new"       // No existing transaction matches
	StatusDuplicate DuplicateStatus = "duplicate" // Same date, amount and description already exist
	StatusReview    DuplicateStatus = "review"    // Same date and amount, similar description
	StatusReconcile DuplicateStatus = "reconcile" // An existing placeholder should be replaced
)

// ReconcileType describes what kind of existing record a candidate replaces.
type ReconcileType string

const (
	ReconcileTypeBill       ReconcileType = "bill"
	ReconcileTypeLoan       ReconcileType = "loan"
	ReconcileTypeCreditCard ReconcileType = "credit_card"
)

// ReconcileMatch identifies an existing transaction an import candidate
// should replace instead of duplicating.
type ReconcileMatch struct {
	TransactionID       uuid.UUID     `json:"transactionId"`                 // The placeholder transaction to replace
	BillPaymentID       *uuid.UUID    `json:"billPaymentId,omitempty"`       // The bill payment to repoint, for bill matches
	BillName            string        `json:"billName"`                      // Display name of the bill or partner account
	Type                ReconcileType `json:"type" example:"bill"`           // What kind of record is replaced
	LinkedTransactionID *uuid.UUID    `json:"linkedTransactionId,omitempty"` // The other leg of the transfer pair, for loan and credit card matches
}

// Row is the per-candidate result of duplicate detection.
type Row struct {
	Index int `json:"index"` // Position of the candidate in the import batch
	NormalizedTransaction
	Status              DuplicateStatus  `json:"status" example:"new"`
	MatchDescription    string           `json:"matchDescription,omitempty"` // The existing description that matched, for duplicate and review rows
	ReconcileMatch      *ReconcileMatch  `json:"reconcileMatch,omitempty"`
	ReconcileCandidates []ReconcileMatch `json:"reconcileCandidates,omitempty"`
	Selected            bool             `json:"selected"` // Whether the row is preselected for import
}

// ReconcileItem pairs an import candidate with the reconciliation match the
// user confirmed for it.
type ReconcileItem struct {
	Transaction NormalizedTransaction `json:"transaction"`
	Match       ReconcileMatch        `json:"match"`
}

// Result summarizes a finished import.
type Result struct {
	Imported   int             `json:"imported" example:"17"`
	Reconciled int             `json:"reconciled" example:"2"`
	Skipped    int             `json:"skipped" example:"0"`
	NewBalance decimal.Decimal `json:"newBalance" example:"1234.56"`
}
