package report

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// missingSentinel stands in for a true-missing cell during the grouping
// pass so it can be recognized and discarded after the re-split.
const missingSentinel = "nan"

// AggregateContacts merges all contact observations of a company into one
// row. The merge is a two-stage delimiter scheme kept bit-for-bit
// compatible with the historical report output: missing cells become a
// sentinel, all rows of a group are concatenated with ",", exact-duplicate
// rows are dropped, then each cell is re-split on ",", sentinel fragments
// are discarded and the remainder rejoined with ";". A single dedup pass
// would be simpler, but downstream consumers parse the ";"-joined shape:
// this is a deliberately preserved quirk, not an improvement target.
func AggregateContacts(ctx context.Context, contacts []model.ContactInfo) (*Table, error) {
	groups := make(map[model.CompanyID][]model.ContactInfo)
	var order []model.CompanyID
	for _, c := range contacts {
		if _, seen := groups[c.Company]; !seen {
			order = append(order, c.Company)
		}
		groups[c.Company] = append(groups[c.Company], c)
	}

	t := NewTable(model.ColContactURL, model.ColPhone, model.ColEmail)

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, id := range order {
		id := id
		group := groups[id]
		g.Go(func() error {
			row := reduceContactGroup(group)
			mu.Lock()
			t.rows[id] = row
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t.order = order
	return t, nil
}

func reduceContactGroup(group []model.ContactInfo) Row {
	// Stage one: per-observation cells with sentinel for missing values,
	// concatenated across the group with ",". After the concat every row
	// of the group renders identically, so dropping exact duplicates
	// collapses the group to a single row.
	cells := map[string][]string{
		model.ColContactURL: nil,
		model.ColPhone:      nil,
		model.ColEmail:      nil,
	}
	for _, c := range group {
		cells[model.ColContactURL] = append(cells[model.ColContactURL], orSentinel(c.SourcePage))
		cells[model.ColPhone] = append(cells[model.ColPhone], orSentinel(strings.Join(c.Phones, ",")))
		cells[model.ColEmail] = append(cells[model.ColEmail], orSentinel(strings.Join(c.Emails, ",")))
	}

	// Stage two: re-split on ",", discard sentinels, rejoin with ";".
	row := Row{}
	for col, values := range cells {
		concatenated := strings.Join(values, ",")
		var kept []string
		for _, fragment := range strings.Split(concatenated, ",") {
			if fragment == missingSentinel || fragment == "" {
				continue
			}
			kept = append(kept, fragment)
		}
		if len(kept) > 0 {
			row[col] = strings.Join(kept, ";")
		}
	}
	return row
}

func orSentinel(s string) string {
	if s == "" {
		return missingSentinel
	}
	return s
}
