package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody_UTF8(t *testing.T) {
	body := DecodeBody([]byte("Geschäftskunden willkommen"))
	assert.Equal(t, "Geschäftskunden willkommen", body)
}

func TestDecodeBody_Latin1Fallback(t *testing.T) {
	// 0xF6/0xDF are ö/ß in ISO-8859-1 but invalid as standalone UTF-8 bytes.
	raw := []byte{'G', 'r', 0xF6, 0xDF, 'e'}
	body := DecodeBody(raw)
	assert.Equal(t, "Größe", body)
}

func TestMatchKeywords_CaseInsensitive(t *testing.T) {
	matched := MatchKeywords("We are B2B experts", []string{"b2b"})
	assert.Equal(t, []string{"b2b"}, matched)
}

func TestMatchKeywords_SubstringInsideToken(t *testing.T) {
	matched := MatchKeywords("ABCB2BXYZ", []string{"b2b"})
	assert.Equal(t, []string{"b2b"}, matched)
}

func TestMatchKeywords_PreservesListOrder(t *testing.T) {
	body := "checkout via Klarna or PayPal, Visa accepted"
	matched := MatchKeywords(body, []string{"visa", "paypal", "klarna", "sepa"})
	assert.Equal(t, []string{"visa", "paypal", "klarna"}, matched)
}

func TestMatchKeywords_NoMatches(t *testing.T) {
	assert.Empty(t, MatchKeywords("nothing relevant here", []string{"shopware", "magento"}))
}

func TestMatchKeywords_DuplicateKeywordCollapsed(t *testing.T) {
	matched := MatchKeywords("shop", []string{"shop", "SHOP"})
	assert.Equal(t, []string{"shop"}, matched)
}

func newPricePattern(t *testing.T) *PricePattern {
	t.Helper()
	pat, err := CompilePricePattern([]string{"$", "EUR", "€", "GBP", "£"})
	require.NoError(t, err)
	return pat
}

func TestExtractPrices_NoCurrencySymbol(t *testing.T) {
	_, ok := ExtractPrices("a page without any price at all", newPricePattern(t))
	assert.False(t, ok, "no symbol means no observation")
}

func TestExtractPrices_SymbolWithoutNumbers(t *testing.T) {
	stats, ok := ExtractPrices("prices in € on request", newPricePattern(t))
	require.True(t, ok)
	assert.Equal(t, 0, stats.Quantity)
	assert.Nil(t, stats.AvgPrice)
	assert.Equal(t, "€", stats.Currency)
}

func TestExtractPrices_NumbersAroundSymbol(t *testing.T) {
	body := "Sneaker € 19,99 and shirt 10.01€ plus socks €5"
	stats, ok := ExtractPrices(body, newPricePattern(t))
	require.True(t, ok)
	assert.Equal(t, 3, stats.Quantity)
	require.NotNil(t, stats.AvgPrice)
	// (19.99 + 10.01 + 5) / 3 = 11.67 after rounding
	assert.InDelta(t, 11.67, *stats.AvgPrice, 0.001)
	assert.Equal(t, "€", stats.Currency)
}

func TestExtractPrices_FirstSymbolWins(t *testing.T) {
	stats, ok := ExtractPrices("from $10 or 9 GBP", newPricePattern(t))
	require.True(t, ok)
	assert.Equal(t, "$", stats.Currency)
	assert.Equal(t, 2, stats.Quantity)
}

func TestExtractPrices_WordSymbol(t *testing.T) {
	stats, ok := ExtractPrices("ab 12,50 EUR inkl. MwSt", newPricePattern(t))
	require.True(t, ok)
	assert.Equal(t, "eur", stats.Currency)
	require.NotNil(t, stats.AvgPrice)
	assert.InDelta(t, 12.50, *stats.AvgPrice, 0.001)
}

func TestExtractPrices_NumbersOnBothSidesOfOneSymbol(t *testing.T) {
	stats, ok := ExtractPrices("ab 10 € 20 Stück", newPricePattern(t))
	require.True(t, ok)
	assert.Equal(t, 2, stats.Quantity)
	require.NotNil(t, stats.AvgPrice)
	assert.InDelta(t, 15.0, *stats.AvgPrice, 0.001)
}

func TestExtractPrices_NumberBetweenTwoSymbolsCountsOnce(t *testing.T) {
	stats, ok := ExtractPrices("€ 10 €", newPricePattern(t))
	require.True(t, ok)
	assert.Equal(t, 1, stats.Quantity)
	require.NotNil(t, stats.AvgPrice)
	assert.InDelta(t, 10.0, *stats.AvgPrice, 0.001)
}

func TestExtractPrices_RoundsToTwoDecimals(t *testing.T) {
	stats, ok := ExtractPrices("€1,00 €2,00 €0,01", newPricePattern(t))
	require.True(t, ok)
	require.NotNil(t, stats.AvgPrice)
	assert.InDelta(t, 1.0, *stats.AvgPrice, 0.001)
}

func TestCompilePricePattern_Empty(t *testing.T) {
	_, err := CompilePricePattern(nil)
	assert.Error(t, err)
}

func newContactPattern(t *testing.T) *ContactPattern {
	t.Helper()
	pat, err := CompileContactPattern([]string{"43", "49"})
	require.NoError(t, err)
	return pat
}

func TestExtractContacts_PhoneVariants(t *testing.T) {
	body := "Impressum: Tel +43 1 234 5678, Fax +49 (0) 89 / 123 456"
	phones, _ := ExtractContacts(body, newContactPattern(t))
	require.Len(t, phones, 2)
	assert.Contains(t, phones[0], "+43")
	assert.Contains(t, phones[1], "+49")
}

func TestExtractContacts_IgnoresOtherCountryCodes(t *testing.T) {
	phones, _ := ExtractContacts("call +33 1 23 45 67 89", newContactPattern(t))
	assert.Empty(t, phones)
}

func TestExtractContacts_Emails(t *testing.T) {
	body := "write to office@acme.test or sales+b2b@acme.co.at"
	_, emails := ExtractContacts(body, newContactPattern(t))
	assert.Equal(t, []string{"office@acme.test", "sales+b2b@acme.co.at"}, emails)
}

func TestExtractContacts_Deduplicates(t *testing.T) {
	body := "office@acme.test office@acme.test +43 1 234 567 +43 1 234 567"
	phones, emails := ExtractContacts(body, newContactPattern(t))
	assert.Len(t, phones, 1)
	assert.Len(t, emails, 1)
}

func TestNormalizeTechnologies_Inverts(t *testing.T) {
	techs := map[string]TechEntry{
		"Apache": {Categories: []string{"Web servers"}},
		"MySQL":  {Categories: []string{"Databases"}},
	}
	got := NormalizeTechnologies(techs)
	assert.Equal(t, map[string][]string{
		"Web servers": {"Apache"},
		"Databases":   {"MySQL"},
	}, got)
}

func TestNormalizeTechnologies_MultiCategory(t *testing.T) {
	techs := map[string]TechEntry{
		"Shopify":    {Categories: []string{"Ecommerce", "CMS"}},
		"WordPress":  {Categories: []string{"CMS"}},
		"Uncategorized": {},
	}
	got := NormalizeTechnologies(techs)
	assert.Equal(t, []string{"Shopify"}, got["Ecommerce"])
	assert.Equal(t, []string{"Shopify", "WordPress"}, got["CMS"])
	assert.Len(t, got, 2, "technologies without categories contribute nothing")
}

func TestNormalizeTechnologies_Idempotent(t *testing.T) {
	techs := map[string]TechEntry{
		"Apache": {Categories: []string{"Web servers", "Web servers"}},
	}
	first := NormalizeTechnologies(techs)
	second := NormalizeTechnologies(techs)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Apache"}, first["Web servers"])
}

func TestNormalizeTechnologies_Empty(t *testing.T) {
	assert.Nil(t, NormalizeTechnologies(nil))
	assert.Nil(t, NormalizeTechnologies(map[string]TechEntry{"X": {}}))
}
