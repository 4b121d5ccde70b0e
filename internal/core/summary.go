package core

import "github.com/shopspring/decimal"

// SentinelAll is the filter value that matches every transaction. The
// reference option lists carry it as their first entry.
const SentinelAll = "Todos"

// cardShareRatio is the illustrative corporate-card share of total spend.
// It is a fixed display ratio, deliberately not derived from payment methods.
var cardShareRatio = decimal.RequireFromString("0.27")

var oneHundred = decimal.NewFromInt(100)

type (
	// CategoryShare is one slice of the category distribution. Percentages
	// are rounded per category independently and need not sum to 100.
	CategoryShare struct {
		Name       string `json:"name"`
		Percentage int    `json:"value"`
		Color      string `json:"color"`
	}

	MonthlyPoint struct {
		Label string          `json:"month"`
		Value decimal.Decimal `json:"value"`
	}

	// ReferenceSeed is the static shape the summary is scaled against.
	ReferenceSeed struct {
		TotalExpenses   decimal.Decimal
		Monthly         []MonthlyPoint
		CategoryColors  map[string]string
		FallbackColor   string
		Savings         int
		SavingsTrend    string
		AvgApprovalTime string
	}

	// Summary is the recomputed-on-read aggregate view over transactions.
	// It has no lifecycle of its own and is never stored.
	Summary struct {
		TotalExpenses      decimal.Decimal `json:"totalExpenses"`
		PendingCount       int             `json:"pendingCount"`
		CorporateCardShare decimal.Decimal `json:"corporateCardExpenses"`
		Savings            int             `json:"savingsGenerated"`
		SavingsTrend       string          `json:"savingsTrend"`
		AvgApprovalTime    string          `json:"avgApprovalTime"`
		Categories         []CategoryShare `json:"categories"`
		MonthlySeries      []MonthlyPoint  `json:"monthlyExpenses"`
	}
)

// ComputeSummary derives the dashboard aggregates from the current
// transaction collection. It is pure: no input is mutated and the same
// inputs always yield the same summary. Empty input yields zero totals
// and empty sequences.
func ComputeSummary(txs []Transaction, seed ReferenceSeed) Summary {
	total := decimal.Zero
	pending := 0
	perCategory := make(map[string]decimal.Decimal)
	var categoryOrder []string

	for _, t := range txs {
		total = total.Add(t.Value)
		if t.Status == StatusPending {
			pending++
		}
		if _, seen := perCategory[t.Category]; !seen {
			categoryOrder = append(categoryOrder, t.Category)
		}
		perCategory[t.Category] = perCategory[t.Category].Add(t.Value)
	}

	categories := make([]CategoryShare, 0, len(categoryOrder))
	for _, name := range categoryOrder {
		pct := 0
		if !total.IsZero() {
			pct = int(perCategory[name].Mul(oneHundred).Div(total).Round(0).IntPart())
		}
		color, ok := seed.CategoryColors[name]
		if !ok {
			color = seed.FallbackColor
		}
		categories = append(categories, CategoryShare{Name: name, Percentage: pct, Color: color})
	}

	// The monthly chart is an illustrative rescaling of the seed shape, not
	// an aggregation of transaction dates.
	denominator := seed.TotalExpenses
	if denominator.IsZero() {
		denominator = decimal.NewFromInt(1)
	}
	scale := total.Div(denominator)
	series := make([]MonthlyPoint, 0, len(seed.Monthly))
	for _, m := range seed.Monthly {
		series = append(series, MonthlyPoint{Label: m.Label, Value: m.Value.Mul(scale)})
	}

	return Summary{
		TotalExpenses:      total,
		PendingCount:       pending,
		CorporateCardShare: total.Mul(cardShareRatio),
		Savings:            seed.Savings,
		SavingsTrend:       seed.SavingsTrend,
		AvgApprovalTime:    seed.AvgApprovalTime,
		Categories:         categories,
		MonthlySeries:      series,
	}
}

// FilterByCostCenter returns the transactions whose cost center matches
// exactly, or all of them when the sentinel is given. Order is preserved.
func FilterByCostCenter(txs []Transaction, costCenter string) []Transaction {
	if costCenter == SentinelAll || costCenter == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.CostCenter == costCenter {
			out = append(out, t)
		}
	}
	return out
}

// FilterByAudit narrows transactions by originating source file and import
// date. Both predicates are conjunctive; the sentinel source file and an
// empty import date each match everything.
func FilterByAudit(txs []Transaction, sourceFile, importDate string) []Transaction {
	if (sourceFile == SentinelAll || sourceFile == "") && importDate == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if sourceFile != SentinelAll && sourceFile != "" && t.SourceFile != sourceFile {
			continue
		}
		if importDate != "" && t.ImportDate != importDate {
			continue
		}
		out = append(out, t)
	}
	return out
}

// DistinctSourceFiles lists the unique non-empty source files in
// first-occurrence order, prefixed with the sentinel.
func DistinctSourceFiles(txs []Transaction) []string {
	out := []string{SentinelAll}
	seen := make(map[string]struct{})
	for _, t := range txs {
		if t.SourceFile == "" {
			continue
		}
		if _, ok := seen[t.SourceFile]; ok {
			continue
		}
		seen[t.SourceFile] = struct{}{}
		out = append(out, t.SourceFile)
	}
	return out
}
