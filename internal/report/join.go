package report

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// ErrNoGeneralInfo is returned when no general-info table exists: without
// it there are no company identities to anchor the join.
var ErrNoGeneralInfo = eris.New("report: general-info table missing")

// Build reconciles the three observation tables and left-joins them into
// the final one-row-per-company report. Price and contact observations
// may be empty (their columns simply stay null for companies without
// them); a nil general-info slice is fatal. Columns null across all
// companies are dropped from the result.
func Build(ctx context.Context, infos []model.GeneralInfo, prices []model.PriceSample, contacts []model.ContactInfo) (*Table, error) {
	if infos == nil {
		return nil, ErrNoGeneralInfo
	}

	general := BuildGeneralTable(infos)

	priceTable, err := AggregatePrices(ctx, prices)
	if err != nil {
		return nil, eris.Wrap(err, "report: aggregate prices")
	}
	contactTable, err := AggregateContacts(ctx, contacts)
	if err != nil {
		return nil, eris.Wrap(err, "report: aggregate contacts")
	}

	final := general.LeftJoin(priceTable).LeftJoin(contactTable).DropEmptyColumns()

	zap.L().Info("report: built",
		zap.Int("companies", final.Len()),
		zap.Int("columns", len(final.Columns())),
		zap.Int("price_groups", priceTable.Len()),
		zap.Int("contact_groups", contactTable.Len()),
	)
	return final, nil
}
