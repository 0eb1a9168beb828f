package importer

import (
	"encoding/json"
	"strings"

	"golang.org/x/exp/slices"
)

// Synonym lists for column name matching. Matching is case-insensitive
// on the trimmed header name.
var (
	dateHeaders        = []string{"date", "transaction date", "trans date", "post date", "posting date", "trans. date"}
	descriptionHeaders = []string{"description", "desc", "memo", "payee", "narrative", "details", "transaction description"}
	categoryHeaders    = []string{"category", "type", "classification"}
	amountHeaders      = []string{"amount", "transaction amount", "trans amount", "value"}
	debitHeaders       = []string{"debit", "withdrawal", "debit amount", "withdrawals"}
	creditHeaders      = []string{"credit", "deposit", "credit amount", "deposits"}
	indicatorHeaders   = []string{"type", "dr/cr", "debit/credit", "indicator", "transaction type", "dr cr"}

	// Indicator values that mark a row as a debit, in canonical order
	debitIndicators = []string{"DR", "DEBIT", "D", "DB", "-"}
)

// DetectedColumns is the result of column detection. A nil column means
// no confident match was found and the user has to pick one manually.
type DetectedColumns struct {
	DateColumn        *int          `json:"dateColumn"`
	DescriptionColumn *int          `json:"descriptionColumn"`
	CategoryColumn    *int          `json:"categoryColumn"`
	Pattern           AmountPattern `json:"pattern"`
}

// MarshalJSON implements the json.Marshaler interface.
func (d DetectedColumns) MarshalJSON() ([]byte, error) {
	pattern, err := MarshalPattern(d.Pattern)
	if err != nil {
		return nil, err
	}

	return json.Marshal(struct {
		DateColumn        *int            `json:"dateColumn"`
		DescriptionColumn *int            `json:"descriptionColumn"`
		CategoryColumn    *int            `json:"categoryColumn"`
		Pattern           json.RawMessage `json:"pattern"`
	}{d.DateColumn, d.DescriptionColumn, d.CategoryColumn, pattern})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *DetectedColumns) UnmarshalJSON(data []byte) error {
	var decoded struct {
		DateColumn        *int            `json:"dateColumn"`
		DescriptionColumn *int            `json:"descriptionColumn"`
		CategoryColumn    *int            `json:"categoryColumn"`
		Pattern           json.RawMessage `json:"pattern"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	pattern, err := UnmarshalPattern(decoded.Pattern)
	if err != nil {
		return err
	}

	d.DateColumn = decoded.DateColumn
	d.DescriptionColumn = decoded.DescriptionColumn
	d.CategoryColumn = decoded.CategoryColumn
	d.Pattern = pattern
	return nil
}

// DetectColumns guesses which columns hold the date, description and
// category, and which amount encoding the statement uses.
//
// It is a pure function of the headers and sample rows and can be called
// repeatedly while the user edits the mapping.
func DetectColumns(headers []string, sample [][]string) DetectedColumns {
	return DetectedColumns{
		DateColumn:        findHeader(headers, dateHeaders),
		DescriptionColumn: findHeader(headers, descriptionHeaders),
		CategoryColumn:    findHeader(headers, categoryHeaders),
		Pattern:           DetectAmountPattern(headers, sample),
	}
}

// DetectAmountPattern resolves which of the three amount encodings the
// statement uses. It returns nil when no amount column can be found.
//
// Resolution order: separate debit/credit columns win, then an amount
// column with a debit/credit indicator column, then a plain single
// amount column.
func DetectAmountPattern(headers []string, sample [][]string) AmountPattern {
	debit := findHeader(headers, debitHeaders)
	credit := findHeader(headers, creditHeaders)
	if debit != nil && credit != nil {
		return SeparatePattern{DebitColumn: *debit, CreditColumn: *credit}
	}

	amount := findHeader(headers, amountHeaders)
	if amount == nil {
		return nil
	}

	indicator := findHeader(headers, indicatorHeaders)
	if indicator != nil && *indicator != *amount {
		if debitValues := observedDebitIndicators(sample, *indicator); len(debitValues) > 0 {
			return IndicatorPattern{
				AmountColumn:    *amount,
				IndicatorColumn: *indicator,
				DebitValues:     debitValues,
			}
		}
	}

	// Single is the fallback whenever an amount column exists, whether or
	// not the sample contains negative values
	return SinglePattern{AmountColumn: *amount}
}

// findHeader returns the index of the first header matching one of the
// names, or nil if none does.
func findHeader(headers []string, names []string) *int {
	for i, header := range headers {
		if slices.Contains(names, strings.ToLower(strings.TrimSpace(header))) {
			index := i
			return &index
		}
	}

	return nil
}

// observedDebitIndicators collects the known debit markers that actually
// occur in the indicator column of the sample rows.
func observedDebitIndicators(sample [][]string, column int) []string {
	observed := make(map[string]bool)
	for _, row := range sample {
		if column >= len(row) {
			continue
		}

		value := strings.ToUpper(strings.TrimSpace(row[column]))
		if value != "" {
			observed[value] = true
		}
	}

	var debitValues []string
	for _, marker := range debitIndicators {
		if observed[marker] {
			debitValues = append(debitValues, marker)
		}
	}

	return debitValues
}
