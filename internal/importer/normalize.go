package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlane/backend/internal/types"
	"github.com/shopspring/decimal"
)

// NormalizeAmounts converts statement rows into signed transaction
// candidates using a confirmed column mapping.
//
// Rows that cannot be normalized are skipped silently: multi-thousand-row
// bank exports commonly contain a few malformed rows and the import
// proceeds with the rest.
func NormalizeAmounts(rows [][]string, mapping ColumnMapping) []NormalizedTransaction {
	transactions := make([]NormalizedTransaction, 0, len(rows))

	for _, row := range rows {
		transaction, ok := normalizeRow(row, mapping)
		if !ok {
			continue
		}

		transactions = append(transactions, transaction)
	}

	return transactions
}

func normalizeRow(row []string, mapping ColumnMapping) (NormalizedTransaction, bool) {
	description := strings.TrimSpace(cell(row, mapping.DescriptionColumn))
	rawDate := strings.TrimSpace(cell(row, mapping.DateColumn))
	if description == "" || rawDate == "" {
		return NormalizedTransaction{}, false
	}

	date, ok := parseRowDate(rawDate)
	if !ok {
		return NormalizedTransaction{}, false
	}

	amount, ok := resolveAmount(row, mapping.Pattern)
	if !ok || amount.IsZero() {
		// Zero amounts carry no ledger meaning
		return NormalizedTransaction{}, false
	}

	var category string
	if mapping.CategoryColumn != nil {
		category = strings.TrimSpace(cell(row, *mapping.CategoryColumn))
	}

	return NormalizedTransaction{
		Date:        date,
		Description: description,
		Amount:      amount.Round(2),
		Category:    category,
	}, true
}

// resolveAmount extracts the signed amount for a row according to the
// amount pattern. Negative amounts are debits.
func resolveAmount(row []string, pattern AmountPattern) (decimal.Decimal, bool) {
	switch p := pattern.(type) {
	case SinglePattern:
		amount := parseNumber(cell(row, p.AmountColumn))
		if amount == nil {
			return decimal.Zero, false
		}
		return *amount, true

	case SeparatePattern:
		// A blank cell is null, not zero
		debit := parseNumber(cell(row, p.DebitColumn))
		credit := parseNumber(cell(row, p.CreditColumn))

		if debit != nil && !debit.IsZero() {
			return debit.Abs().Neg(), true
		}
		if credit != nil && !credit.IsZero() {
			return credit.Abs(), true
		}

		// Neither a debit nor a credit, nothing to import from this row
		return decimal.Zero, false

	case IndicatorPattern:
		amount := parseNumber(cell(row, p.AmountColumn))
		if amount == nil {
			return decimal.Zero, false
		}

		indicator := strings.ToUpper(strings.TrimSpace(cell(row, p.IndicatorColumn)))
		for _, debitValue := range p.DebitValues {
			if indicator == debitValue {
				return amount.Abs().Neg(), true
			}
		}

		return amount.Abs(), true
	}

	return decimal.Zero, false
}

// parseRowDate parses the date formats seen in bank exports, in priority
// order: ISO YYYY-MM-DD, MM/DD/YYYY and MM/DD/YY.
//
// For slash dates, a first number above 12 with a second number of at
// most 12 is read as DD/MM instead. This heuristic is load-bearing for
// international exports and must not change.
func parseRowDate(value string) (types.Date, bool) {
	if date, err := types.ParseDate(value); err == nil {
		return date, true
	}

	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return types.Date{}, false
	}

	first, err1 := strconv.Atoi(parts[0])
	second, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return types.Date{}, false
	}

	// Two-digit years are read as 20xx
	if len(parts[2]) <= 2 {
		year += 2000
	}

	month, day := first, second
	if first > 12 && second <= 12 {
		month, day = second, first
	}

	// Reconstruct the date to reject impossible values like 02/30
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return types.Date{}, false
	}

	return types.DateOf(date), true
}

// parseNumber cleans up a statement amount cell and parses it.
//
// It strips currency symbols, thousands separators and whitespace, and
// reads a parenthesized value as negative. It returns nil when the cell
// does not contain a number.
func parseNumber(value string) *decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ', '\t':
			return -1
		}
		return r
	}, value)

	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	if cleaned == "" {
		return nil
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}

	return &amount
}

// cell returns the cell at the index, or an empty string for rows that
// are shorter than the mapping expects.
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}

	return row[index]
}
