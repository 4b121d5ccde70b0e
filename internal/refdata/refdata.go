// Package refdata holds the static reference data the dashboard is seeded
// with: option lists for the categorical dimensions, the baseline monthly
// shape the projection chart is scaled against, and the initial collaborator
// and transaction records. None of it is user-editable at runtime.
package refdata

import (
	"github.com/shopspring/decimal"

	"vexpenses/internal/core"
)

// FallbackColor is used for categories with no configured color.
const FallbackColor = "#94a3b8"

// UnitAll is the sentinel entry of the unit list; the cost-center list uses
// core.SentinelAll.
const UnitAll = "Todas"

// Option lists. The first entry of CostCenters and Units is the sentinel and
// is excluded when picking values for generated rows.
var (
	CostCenters    = []string{core.SentinelAll, "Marketing", "Vendas", "Financeiro", "Logística", "Filial SP"}
	Units          = []string{UnitAll, "Matriz", "Filial SP", "Filial RJ"}
	PaymentMethods = []string{"Cartão Corporativo", "Cartão Pessoal", "Dinheiro", "Boleto"}
	Categories     = []string{"Alimentação", "Transporte", "Hospedagem", "Outros"}
)

var categoryColors = map[string]string{
	"Alimentação": "#3b82f6",
	"Transporte":  "#10b981",
	"Hospedagem":  "#f59e0b",
	"Outros":      "#94a3b8",
}

// Seed returns the reference seed consumed by core.ComputeSummary: the
// twelve-point baseline shape with its total, the category color mapping,
// and the static KPI figures carried through unchanged.
func Seed() core.ReferenceSeed {
	return core.ReferenceSeed{
		TotalExpenses:   decimal.NewFromInt(310780),
		Monthly:         monthlyShape(),
		CategoryColors:  categoryColors,
		FallbackColor:   FallbackColor,
		Savings:         52,
		SavingsTrend:    "8,9%",
		AvgApprovalTime: "1,2 dias",
	}
}

func monthlyShape() []core.MonthlyPoint {
	labels := []string{"Apr", "Mai", "Jun", "Jul", "Ago", "Sep", "Out", "Nov", "Dez", "Jan", "Fev", "Mar"}
	values := []int64{8000, 12000, 11000, 15000, 16000, 15000, 19000, 25000, 30000, 32000, 38000, 41000}
	shape := make([]core.MonthlyPoint, len(labels))
	for i := range labels {
		shape[i] = core.MonthlyPoint{Label: labels[i], Value: decimal.NewFromInt(values[i])}
	}
	return shape
}

// Collaborators returns the initial collaborator registry.
func Collaborators() []core.Collaborator {
	return []core.Collaborator{
		{ID: "c1", Name: "Ana Oliveira", AvatarRef: "https://i.pravatar.cc/150?u=ana", Department: "Marketing"},
		{ID: "c2", Name: "Lucas Santos", AvatarRef: "https://i.pravatar.cc/150?u=lucas", Department: "Filial SP"},
		{ID: "c3", Name: "Maria Pereira", AvatarRef: "https://i.pravatar.cc/150?u=maria", Department: "Vendas"},
		{ID: "c4", Name: "Pedro Costa", AvatarRef: "https://i.pravatar.cc/150?u=pedro", Department: "Financeiro"},
		{ID: "c5", Name: "André Lima", AvatarRef: "https://i.pravatar.cc/150?u=andre", Department: "Logística"},
		{ID: "c6", Name: "Laura Martins", AvatarRef: "https://i.pravatar.cc/150?u=laura", Department: "Marketing"},
	}
}

// Transactions returns the initial seed transactions, tagged with the
// bootstrap import provenance.
func Transactions() []core.Transaction {
	collabs := Collaborators()
	return []core.Transaction{
		{
			ID:               "EXP-10492",
			Date:             "2024-03-15",
			ImportDate:       "2024-03-01",
			SourceFile:       "Sistema Inicial",
			Collaborator:     collabs[0],
			CostCenter:       "Marketing",
			Category:         "Transporte",
			Value:            decimal.RequireFromString("528.50"),
			Status:           core.StatusApproved,
			PaymentMethod:    "Cartão Corporativo",
			Unit:             "Matriz",
			ApprovalTimeDays: 1,
			SLA:              core.SLA{Text: "Dentro do prazo", State: core.SLAOnTime, Detail: "Dentro do prazo"},
		},
		{
			ID:            "EXP-10493",
			Date:          "2024-03-18",
			ImportDate:    "2024-03-01",
			SourceFile:    "Sistema Inicial",
			Collaborator:  collabs[1],
			CostCenter:    "Filial SP",
			Category:      "Alimentação",
			Value:         decimal.RequireFromString("330.00"),
			Status:        core.StatusPending,
			PaymentMethod: "Dinheiro",
			Unit:          "Filial SP",
			SLA:           core.SLA{Text: "Hoje", State: core.SLAToday, Detail: "3d"},
		},
		{
			ID:               "EXP-10494",
			Date:             "2024-03-20",
			ImportDate:       "2024-03-01",
			SourceFile:       "Sistema Inicial",
			Collaborator:     collabs[2],
			CostCenter:       "Vendas",
			Category:         "Hospedagem",
			Value:            decimal.RequireFromString("1280.00"),
			Status:           core.StatusApproved,
			PaymentMethod:    "Cartão Pessoal",
			Unit:             "Filial RJ",
			ApprovalTimeDays: 2,
			SLA:              core.SLA{Text: "Dentro do prazo", State: core.SLAOnTime, Detail: "Dentro do prazo"},
		},
	}
}
