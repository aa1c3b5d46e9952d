package report

import (
	"context"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// totalProductsColumn renames the summed per-page quantity in the report.
const totalProductsColumn = "total_num_products"

// AggregatePrices groups price observations by company and reduces each
// group: unweighted mean of the per-page average prices (each sub-page
// counts once regardless of how many tokens built it), first non-nil
// currency, summed quantity. Identity fully partitions the groups, so
// they reduce in parallel.
func AggregatePrices(ctx context.Context, samples []model.PriceSample) (*Table, error) {
	groups := make(map[model.CompanyID][]model.PriceSample)
	var order []model.CompanyID
	for _, s := range samples {
		if _, seen := groups[s.Company]; !seen {
			order = append(order, s.Company)
		}
		groups[s.Company] = append(groups[s.Company], s)
	}

	t := NewTable(model.ColAvgPrice, model.ColCurrency, totalProductsColumn)

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, id := range order {
		id := id
		group := groups[id]
		g.Go(func() error {
			row := reducePriceGroup(group)
			mu.Lock()
			t.rows[id] = row
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Insertion order was decided up front; restore it after the
	// parallel fill.
	t.order = order
	return t, nil
}

func reducePriceGroup(group []model.PriceSample) Row {
	row := Row{}

	var sum float64
	var counted, totalQty int
	currency := ""
	for _, s := range group {
		if s.AvgPrice != nil {
			sum += *s.AvgPrice
			counted++
		}
		if currency == "" && s.Currency != "" {
			currency = s.Currency
		}
		totalQty += s.Quantity
	}

	if counted > 0 {
		row[model.ColAvgPrice] = math.Round(sum/float64(counted)*100) / 100
	}
	if currency != "" {
		row[model.ColCurrency] = currency
	}
	row[totalProductsColumn] = float64(totalQty)
	return row
}
