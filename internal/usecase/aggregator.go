package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"txn-classifier/internal/domain"
)

// Aggregator computes the metrics and breakdowns shown on the dashboard.
// Amounts are summed exactly; rounding happens only when they are rendered.
type Aggregator struct {
	uncategorized string
	otherMethod   string
	undated       string
	location      *time.Location
}

// NewAggregator creates an aggregator using the labels and time zone of
// rules.
func NewAggregator(rules domain.Rules) *Aggregator {
	rules = rules.WithDefaults()
	return &Aggregator{
		uncategorized: rules.UncategorizedLabel,
		otherMethod:   rules.OtherMethodLabel,
		undated:       rules.UndatedLabel,
		location:      rules.Location(),
	}
}

// ComputeActual returns the transactions whose final type isn't internal.
// final must be aligned with transactions.
func (a *Aggregator) ComputeActual(transactions []domain.Transaction, final []domain.Type) []domain.Transaction {
	actual := make([]domain.Transaction, 0, len(transactions))
	for i, tx := range transactions {
		if i < len(final) && final[i] == domain.TypeInternal {
			continue
		}
		actual = append(actual, tx)
	}
	return actual
}

// ComputeMetrics sums spend and income over the actual transactions.
func (a *Aggregator) ComputeMetrics(transactions []domain.Transaction, final []domain.Type) domain.DerivedMetrics {
	return a.Summarize(a.ComputeActual(transactions, final))
}

// Summarize computes the metrics of an already filtered actual list.
func (a *Aggregator) Summarize(actual []domain.Transaction) domain.DerivedMetrics {
	spend, income := decimal.Zero, decimal.Zero
	for _, tx := range actual {
		switch tx.Direction {
		case domain.Debit:
			spend = spend.Add(tx.Amount.Abs())
		case domain.Credit:
			income = income.Add(tx.Amount.Abs())
		}
	}
	return domain.DerivedMetrics{
		TotalSpend:  spend,
		TotalIncome: income,
		NetFlow:     income.Sub(spend),
		Count:       len(actual),
	}
}

// GroupByDay partitions actual by calendar day, oldest first.
func (a *Aggregator) GroupByDay(actual []domain.Transaction) domain.Breakdown {
	b := a.groupBy(actual, a.dayKey)
	sortByDay := func(groups []domain.GroupTotal) {
		sort.SliceStable(groups, func(i, j int) bool {
			// undated sorts after every real day
			if (groups[i].Key == a.undated) != (groups[j].Key == a.undated) {
				return groups[j].Key == a.undated
			}
			return groups[i].Key < groups[j].Key
		})
	}
	sortByDay(b.Debit)
	sortByDay(b.Credit)
	return b
}

// GroupByCategory partitions actual by category, largest amount first.
func (a *Aggregator) GroupByCategory(actual []domain.Transaction) domain.Breakdown {
	b := a.groupBy(actual, func(tx domain.Transaction) string {
		return labelOr(tx.Category, a.uncategorized)
	})
	sortByAmount(b.Debit)
	sortByAmount(b.Credit)
	return b
}

// GroupByMethod partitions actual by payment method, largest amount first.
func (a *Aggregator) GroupByMethod(actual []domain.Transaction) domain.Breakdown {
	b := a.groupBy(actual, func(tx domain.Transaction) string {
		return labelOr(tx.Method, a.otherMethod)
	})
	sortByAmount(b.Debit)
	sortByAmount(b.Credit)
	return b
}

// GroupByType totals every transaction, internal ones included, by its
// final type. Types without transactions are reported with a zero amount.
func (a *Aggregator) GroupByType(transactions []domain.Transaction, final []domain.Type) []domain.GroupTotal {
	totals := make(map[domain.Type]*domain.GroupTotal, len(domain.Types))
	for _, typ := range domain.Types {
		totals[typ] = &domain.GroupTotal{Key: string(typ), Amount: decimal.Zero}
	}
	for i, tx := range transactions {
		typ := domain.TypeUnknown
		if i < len(final) {
			typ = final[i]
		}
		g, ok := totals[typ]
		if !ok {
			g = &domain.GroupTotal{Key: string(typ), Amount: decimal.Zero}
			totals[typ] = g
		}
		g.Amount = g.Amount.Add(tx.Amount.Abs())
		g.Count++
	}

	groups := make([]domain.GroupTotal, 0, len(totals))
	for _, typ := range domain.Types {
		groups = append(groups, *totals[typ])
	}
	return groups
}

func (a *Aggregator) groupBy(actual []domain.Transaction, key func(domain.Transaction) string) domain.Breakdown {
	debit := make(map[string]*domain.GroupTotal)
	credit := make(map[string]*domain.GroupTotal)
	var debitOrder, creditOrder []string

	for _, tx := range actual {
		var groups map[string]*domain.GroupTotal
		var order *[]string
		switch tx.Direction {
		case domain.Debit:
			groups, order = debit, &debitOrder
		case domain.Credit:
			groups, order = credit, &creditOrder
		default:
			continue
		}

		k := key(tx)
		g, ok := groups[k]
		if !ok {
			g = &domain.GroupTotal{Key: k, Amount: decimal.Zero}
			groups[k] = g
			*order = append(*order, k)
		}
		g.Amount = g.Amount.Add(tx.Amount.Abs())
		g.Count++
	}

	return domain.Breakdown{
		Debit:  flatten(debit, debitOrder),
		Credit: flatten(credit, creditOrder),
	}
}

func (a *Aggregator) dayKey(tx domain.Transaction) string {
	if !tx.HasTimestamp() {
		return a.undated
	}
	return tx.Timestamp.In(a.location).Format(time.DateOnly)
}

func flatten(groups map[string]*domain.GroupTotal, order []string) []domain.GroupTotal {
	out := make([]domain.GroupTotal, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

func sortByAmount(groups []domain.GroupTotal) {
	sort.SliceStable(groups, func(i, j int) bool {
		if c := groups[i].Amount.Cmp(groups[j].Amount); c != 0 {
			return c > 0
		}
		return groups[i].Key < groups[j].Key
	})
}

func labelOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
