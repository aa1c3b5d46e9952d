package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadspider-cli/internal/model"
)

func f(v float64) *float64 { return &v }

func TestBuildGeneralTable_CombinedFromKeywords(t *testing.T) {
	infos := []model.GeneralInfo{{
		Company:        "acme.test",
		WebshopSystems: []string{"shopware"},
	}}
	tbl := BuildGeneralTable(infos)
	row := tbl.Get("acme.test")
	require.NotNil(t, row)
	assert.Equal(t, "shopware", row[model.ColWebshopSys])
	assert.Equal(t, "shopware", row[combinedColumn])
}

func TestBuildGeneralTable_CombinedFromEcommerce(t *testing.T) {
	infos := []model.GeneralInfo{{
		Company:      "acme.test",
		Technologies: map[string][]string{"Ecommerce": {"Shopify"}},
	}}
	tbl := BuildGeneralTable(infos)
	row := tbl.Get("acme.test")
	require.NotNil(t, row)
	assert.Equal(t, "shopify", row[model.ColWebshopSys], "keyword value absent, Ecommerce substitutes")
	assert.Equal(t, "shopify", row[combinedColumn])
	assert.Equal(t, "shopify", row["Ecommerce"], "sibling column lower-cased")
}

func TestBuildGeneralTable_CombinedUnion(t *testing.T) {
	infos := []model.GeneralInfo{{
		Company:        "acme.test",
		WebshopSystems: []string{"shopware"},
		Technologies:   map[string][]string{"Ecommerce": {"Shopify"}},
	}}
	row := BuildGeneralTable(infos).Get("acme.test")
	require.NotNil(t, row)
	assert.Equal(t, "shopware", row[model.ColWebshopSys], "present keyword value is never overwritten")
	combined, _ := row[combinedColumn].(string)
	parts := strings.Split(combined, ",")
	assert.ElementsMatch(t, []string{"shopware", "shopify"}, parts)
}

func TestBuildGeneralTable_BothSourcesAbsent(t *testing.T) {
	row := BuildGeneralTable([]model.GeneralInfo{{Company: "acme.test"}}).Get("acme.test")
	require.NotNil(t, row)
	assert.Nil(t, row[combinedColumn])
	assert.Nil(t, row[model.ColWebshopSys])
}

func TestBuildGeneralTable_TechFlattenedAndB2BTagged(t *testing.T) {
	infos := []model.GeneralInfo{{
		Company:     "acme.test",
		B2BKeywords: []string{"b2b", "wholesale"},
		Technologies: map[string][]string{
			"Web servers": {"Apache"},
			"Databases":   {"MySQL"},
		},
	}}
	tbl := BuildGeneralTable(infos)
	row := tbl.Get("acme.test")
	require.NotNil(t, row)
	assert.Equal(t, "Apache", row["Web servers"])
	assert.Equal(t, "MySQL", row["Databases"])
	assert.Equal(t, "b2b,wholesale", row[model.ColB2BWords])
	assert.Equal(t, "true", row[taggedB2BColumn])
	assert.Contains(t, tbl.Columns(), "Web servers")
	assert.Contains(t, tbl.Columns(), "Databases")
}

func TestBuildGeneralTable_NoB2BWords(t *testing.T) {
	row := BuildGeneralTable([]model.GeneralInfo{{Company: "x.test"}}).Get("x.test")
	require.NotNil(t, row)
	assert.Equal(t, "false", row[taggedB2BColumn])
	assert.Nil(t, row[model.ColB2BWords])
}

func TestAggregatePrices_UnweightedMean(t *testing.T) {
	samples := []model.PriceSample{
		{Company: "acme.test", AvgPrice: f(10.0), Quantity: 2, Currency: "€"},
		{Company: "acme.test", AvgPrice: f(20.0), Quantity: 4},
	}
	tbl, err := AggregatePrices(context.Background(), samples)
	require.NoError(t, err)
	row := tbl.Get("acme.test")
	require.NotNil(t, row)
	assert.Equal(t, 15.0, row[model.ColAvgPrice], "mean of means, not token-weighted")
	assert.Equal(t, 6.0, row[totalProductsColumn])
	assert.Equal(t, "€", row[model.ColCurrency])
}

func TestAggregatePrices_NilAveragesSkipped(t *testing.T) {
	samples := []model.PriceSample{
		{Company: "acme.test", Quantity: 0, Currency: "€"},
		{Company: "acme.test", AvgPrice: f(8.0), Quantity: 1},
	}
	tbl, err := AggregatePrices(context.Background(), samples)
	require.NoError(t, err)
	row := tbl.Get("acme.test")
	assert.Equal(t, 8.0, row[model.ColAvgPrice])
	assert.Equal(t, 1.0, row[totalProductsColumn])
}

func TestAggregatePrices_FirstCurrencyWins(t *testing.T) {
	samples := []model.PriceSample{
		{Company: "acme.test", Quantity: 0},
		{Company: "acme.test", AvgPrice: f(5), Quantity: 1, Currency: "$"},
		{Company: "acme.test", AvgPrice: f(7), Quantity: 1, Currency: "€"},
	}
	tbl, err := AggregatePrices(context.Background(), samples)
	require.NoError(t, err)
	assert.Equal(t, "$", tbl.Get("acme.test")[model.ColCurrency])
}

func TestAggregateContacts_SemicolonJoin(t *testing.T) {
	contacts := []model.ContactInfo{
		{Company: "acme.test", SourcePage: "https://acme.test/impressum", Phones: []string{"+43 1 234", "+43 1 999"}},
		{Company: "acme.test", SourcePage: "https://acme.test/kontakt", Emails: []string{"office@acme.test"}},
	}
	tbl, err := AggregateContacts(context.Background(), contacts)
	require.NoError(t, err)
	row := tbl.Get("acme.test")
	require.NotNil(t, row)
	assert.Equal(t, "+43 1 234;+43 1 999", row[model.ColPhone])
	assert.Equal(t, "office@acme.test", row[model.ColEmail])
	assert.Equal(t, "https://acme.test/impressum;https://acme.test/kontakt", row[model.ColContactURL])
}

func TestAggregateContacts_Idempotent(t *testing.T) {
	contacts := []model.ContactInfo{
		{Company: "acme.test", SourcePage: "https://acme.test/kontakt", Phones: []string{"+43 1 234"}, Emails: []string{"a@acme.test"}},
		{Company: "acme.test", SourcePage: "https://acme.test/impressum", Emails: []string{"b@acme.test"}},
	}
	first, err := AggregateContacts(context.Background(), contacts)
	require.NoError(t, err)
	second, err := AggregateContacts(context.Background(), contacts)
	require.NoError(t, err)
	assert.Equal(t, first.Get("acme.test"), second.Get("acme.test"))
}

func TestAggregateContacts_AllMissingColumnStaysNil(t *testing.T) {
	contacts := []model.ContactInfo{
		{Company: "acme.test", SourcePage: "https://acme.test/kontakt"},
	}
	tbl, err := AggregateContacts(context.Background(), contacts)
	require.NoError(t, err)
	row := tbl.Get("acme.test")
	assert.Nil(t, row[model.ColPhone])
	assert.Nil(t, row[model.ColEmail])
}

func TestBuild_LeftJoinKeepsAllCompanies(t *testing.T) {
	infos := []model.GeneralInfo{
		{Company: "a.test", WebshopSystems: []string{"shopware"}},
		{Company: "b.test"},
	}
	prices := []model.PriceSample{
		{Company: "a.test", AvgPrice: f(12), Quantity: 3, Currency: "€"},
		{Company: "orphan.test", AvgPrice: f(99), Quantity: 1, Currency: "$"},
	}

	tbl, err := Build(context.Background(), infos, prices, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len(), "one row per general-info identity")
	assert.Nil(t, tbl.Get("orphan.test"), "identities without general info are dropped")
	assert.Nil(t, tbl.Get("b.test")[model.ColAvgPrice], "left join leaves nulls")
	assert.Equal(t, 12.0, tbl.Get("a.test")[model.ColAvgPrice])
}

func TestBuild_DropsAllNullColumns(t *testing.T) {
	infos := []model.GeneralInfo{{Company: "a.test"}}

	tbl, err := Build(context.Background(), infos, nil, nil)
	require.NoError(t, err)

	for _, col := range tbl.Columns() {
		populated := false
		for _, id := range tbl.Companies() {
			if tbl.Get(id)[col] != nil {
				populated = true
			}
		}
		assert.True(t, populated, "column %q should have been dropped", col)
	}
	assert.NotContains(t, tbl.Columns(), model.ColPhone)
	assert.NotContains(t, tbl.Columns(), model.ColAvgPrice)
}

func TestBuild_MissingGeneralInfoFatal(t *testing.T) {
	_, err := Build(context.Background(), nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoGeneralInfo)
}

func TestWriteCSV_QuotesOnlyNonNumeric(t *testing.T) {
	tbl := NewTable("name", "score", "count")
	tbl.Set("a.test", Row{"name": "Acme \"GmbH\"", "score": 12.5, "count": 3.0})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(tbl, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"company_url","name","score","count"`, lines[0])
	assert.Equal(t, `"a.test","Acme ""GmbH""",12.5,3`, lines[1])
}

func TestWriteCSV_NullCellsEmpty(t *testing.T) {
	tbl := NewTable("x", "y")
	tbl.Set("a.test", Row{"x": "v"})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(tbl, &buf))
	assert.Contains(t, buf.String(), `"a.test","v",`+"\n")
}

func TestTable_LeftJoinDoesNotMutateInputs(t *testing.T) {
	left := NewTable("a")
	left.Set("x", Row{"a": "1"})
	right := NewTable("b")
	right.Set("x", Row{"b": "2"})

	joined := left.LeftJoin(right)
	joined.Get("x")["a"] = "mutated"

	assert.Equal(t, "1", left.Get("x")["a"])
	assert.Equal(t, []string{"a"}, left.Columns())
	assert.Equal(t, []string{"a", "b"}, joined.Columns())
}
