package importer

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerlane/backend/internal/models"
	"github.com/ledgerlane/backend/internal/types"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"gorm.io/gorm"
)

// Descriptions within this Levenshtein distance of an existing
// transaction are flagged for review.
const fuzzyDistanceThreshold = 3

// Variable bill estimates match an import amount within ±20%.
var (
	variableBillRatioMin = decimal.NewFromFloat(0.8)
	variableBillRatioMax = decimal.NewFromFloat(1.2)
)

// DetectDuplicates compares normalized candidates against the existing
// transactions of the account and classifies each one.
//
// A candidate matching an existing transaction exactly (same date, amount
// and description) becomes a duplicate; a close description match on the
// same date and amount is flagged for review. Expense candidates that are
// still new are checked against open bill payments and loan or credit
// card transfer legs for reconciliation.
func DetectDuplicates(db *gorm.DB, userID uuid.UUID, accountID uuid.UUID, candidates []NormalizedTransaction) ([]Row, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	var account models.Account
	if err := account.ForUser(db, accountID, userID); err != nil {
		return nil, err
	}

	existing, err := account.Transactions(db)
	if err != nil {
		return nil, err
	}

	// Group existing descriptions by date and cent amount
	descriptionsByKey := make(map[string][]string)
	for _, transaction := range existing {
		key := matchKey(transaction.Date, transaction.Amount)
		descriptionsByKey[key] = append(descriptionsByKey[key], transaction.Description)
	}

	index, err := buildReconcileIndex(db, account)
	if err != nil {
		return nil, err
	}

	rules, err := matchRules(db, userID)
	if err != nil {
		return nil, err
	}

	// Reconciliation targets claimed by earlier rows of this batch.
	// The set is local to this call, concurrent imports are not
	// coordinated here.
	claimed := make(map[uuid.UUID]bool)

	rows := make([]Row, 0, len(candidates))
	for i, candidate := range candidates {
		row := Row{
			Index:                 i,
			NormalizedTransaction: candidate,
			Status:                StatusNew,
		}

		for _, description := range descriptionsByKey[matchKey(candidate.Date, candidate.Amount)] {
			if strings.EqualFold(description, candidate.Description) {
				// An exact match beats any fuzzy match, stop scanning
				row.Status = StatusDuplicate
				row.MatchDescription = description
				break
			}

			if isFuzzyMatch(description, candidate.Description) {
				// Keep scanning, a later description may match exactly
				row.Status = StatusReview
				row.MatchDescription = description
			}
		}

		// Only expenses that look new are candidates for reconciliation
		if row.Status == StatusNew && candidate.Amount.IsNegative() {
			if matches := index.find(candidate, claimed); len(matches) > 0 {
				row.Status = StatusReconcile
				row.ReconcileMatch = &matches[0]
				row.ReconcileCandidates = matches
				claimed[matches[0].TransactionID] = true
			}
		}

		if row.Category == "" {
			row.Category = applyMatchRules(rules, candidate.Description)
		}

		// Duplicates and review rows require the user to opt in
		row.Selected = row.Status == StatusNew || row.Status == StatusReconcile
		rows = append(rows, row)
	}

	return rows, nil
}

// matchKey builds the lookup key for exact and fuzzy duplicate matching.
// Amounts are rounded to cents before any comparison.
func matchKey(date types.Date, amount decimal.Decimal) string {
	return date.String() + "|" + amount.Round(2).StringFixed(2)
}

// isFuzzyMatch reports whether two descriptions are close enough to flag
// a candidate for review.
func isFuzzyMatch(a, b string) bool {
	// Strings differing in length by more than 10 cannot be close,
	// skip the quadratic distance computation
	lengthDiff := len(a) - len(b)
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if lengthDiff > 10 {
		return false
	}

	distance := levenshtein.DistanceForStrings(
		[]rune(strings.ToLower(a)),
		[]rune(strings.ToLower(b)),
		levenshtein.DefaultOptions,
	)

	return distance < fuzzyDistanceThreshold
}

// reconcileCandidate is an existing record an expense row may replace.
type reconcileCandidate struct {
	match    ReconcileMatch
	date     types.Date
	estimate decimal.Decimal // absolute amount of the existing record
}

// reconcileIndex holds the reconciliation candidates of an account,
// keyed by absolute amount in cents. Variable bill payments are kept in
// a side list for the fuzzy amount fallback.
type reconcileIndex struct {
	byCents  map[int64][]reconcileCandidate
	variable []reconcileCandidate
}

// buildReconcileIndex collects the bill-linked and transfer-linked
// transactions a candidate expense could reconcile against.
func buildReconcileIndex(db *gorm.DB, account models.Account) (reconcileIndex, error) {
	index := reconcileIndex{byCents: make(map[int64][]reconcileCandidate)}

	// Bill payments booked against a manually created transaction on
	// this account
	var payments []models.BillPayment
	err := db.
		Joins("JOIN transactions ON transactions.id = bill_payments.transaction_id").
		Where("transactions.account_id = ?", account.ID).
		Where("transactions.source <> ?", models.TransactionSourceImport).
		Preload("Bill").
		Preload("Transaction").
		Find(&payments).Error
	if err != nil {
		return reconcileIndex{}, err
	}

	for i := range payments {
		payment := payments[i]
		if payment.TransactionID == nil || payment.Transaction == nil {
			continue
		}

		candidate := reconcileCandidate{
			match: ReconcileMatch{
				TransactionID: *payment.TransactionID,
				BillPaymentID: &payment.ID,
				BillName:      payment.Bill.Name,
				Type:          ReconcileTypeBill,
			},
			date:     payment.Transaction.Date,
			estimate: payment.Transaction.Amount.Abs().Round(2),
		}

		index.add(candidate)
		if payment.Bill.IsVariable {
			// The fallback compares against the stored estimate of the
			// payment, not the placeholder transaction amount
			variable := candidate
			variable.estimate = payment.Amount.Abs().Round(2)
			index.variable = append(index.variable, variable)
		}
	}

	// Transfer legs whose partner is a loan principal entry or a credit
	// card transfer
	var transfers []models.Transaction
	err = db.
		Where(models.Transaction{AccountID: account.ID, Type: models.TransactionTypeTransfer}).
		Where("source <> ?", models.TransactionSourceImport).
		Where("linked_transaction_id IS NOT NULL").
		Preload("LinkedTransaction").
		Preload("LinkedTransaction.Account").
		Find(&transfers).Error
	if err != nil {
		return reconcileIndex{}, err
	}

	for i := range transfers {
		transfer := transfers[i]
		partner := transfer.LinkedTransaction
		if partner == nil {
			continue
		}

		var reconcileType ReconcileType
		switch {
		case partner.Type == models.TransactionTypeLoanPrincipal &&
			(partner.Account.Type == models.AccountTypeLoan || partner.Account.Type == models.AccountTypeMortgage):
			reconcileType = ReconcileTypeLoan
		case partner.Type == models.TransactionTypeTransfer &&
			partner.Account.Type == models.AccountTypeCreditCard:
			reconcileType = ReconcileTypeCreditCard
		default:
			continue
		}

		index.add(reconcileCandidate{
			match: ReconcileMatch{
				TransactionID:       transfer.ID,
				BillName:            partner.Account.Name,
				Type:                reconcileType,
				LinkedTransactionID: transfer.LinkedTransactionID,
			},
			date:     transfer.Date,
			estimate: transfer.Amount.Abs().Round(2),
		})
	}

	return index, nil
}

func (i *reconcileIndex) add(candidate reconcileCandidate) {
	cents := candidate.estimate.Mul(decimal.NewFromInt(100)).IntPart()
	i.byCents[cents] = append(i.byCents[cents], candidate)
}

// find returns the unclaimed reconciliation candidates for an expense,
// preferring exact cent matches in the same calendar month and falling
// back to variable bill estimates within ±20%.
func (i *reconcileIndex) find(candidate NormalizedTransaction, claimed map[uuid.UUID]bool) []ReconcileMatch {
	amount := candidate.Amount.Abs().Round(2)
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	month := candidate.Date.Month()

	var matches []ReconcileMatch
	for _, existing := range i.byCents[cents] {
		if claimed[existing.match.TransactionID] || !existing.date.Month().Equal(month) {
			continue
		}

		matches = append(matches, existing.match)
	}
	if len(matches) > 0 {
		return matches
	}

	for _, existing := range i.variable {
		if claimed[existing.match.TransactionID] || !existing.date.Month().Equal(month) {
			continue
		}

		if existing.estimate.IsZero() {
			continue
		}

		ratio := amount.Div(existing.estimate)
		if ratio.GreaterThanOrEqual(variableBillRatioMin) && ratio.LessThanOrEqual(variableBillRatioMax) {
			matches = append(matches, existing.match)
		}
	}

	return matches
}

// matchRules loads the category match rules of a user in priority order.
func matchRules(db *gorm.DB, userID uuid.UUID) ([]models.MatchRule, error) {
	var rules []models.MatchRule
	err := db.
		Where(models.MatchRule{UserID: userID}).
		Order("priority asc").
		Find(&rules).Error
	return rules, err
}

// applyMatchRules returns the category of the first rule whose pattern
// matches the description, or an empty string.
func applyMatchRules(rules []models.MatchRule, description string) string {
	for _, rule := range rules {
		// Rules are loaded in priority order, the first match wins
		if glob.Glob(rule.Match, description) {
			return rule.Category
		}
	}

	return ""
}
