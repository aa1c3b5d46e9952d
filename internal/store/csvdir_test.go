package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadspider-cli/internal/model"
)

func newTestCSVDir(t *testing.T) *CSVDirStore {
	t.Helper()
	st, err := NewCSVDir(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestCSVDir_GeneralRoundTrip(t *testing.T) {
	st := newTestCSVDir(t)
	ctx := context.Background()

	info := model.GeneralInfo{
		Company:        "https://acme.test",
		Language:       "de-AT",
		B2BKeywords:    []string{"b2b", "wholesale"},
		Payments:       []string{"visa", "paypal"},
		WebshopURLs:    []string{"https://acme.test/shop"},
		WebshopSystems: []string{"shopware"},
		Technologies:   map[string][]string{"Web servers": {"Apache"}},
		SocialLinks:    []string{"https://linkedin.com/company/acme"},
	}
	require.NoError(t, st.AppendGeneral(ctx, info))

	infos, err := st.ListGeneral(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, info, infos[0])
}

func TestCSVDir_PriceRoundTrip(t *testing.T) {
	st := newTestCSVDir(t)
	ctx := context.Background()

	avg := 12.5
	require.NoError(t, st.AppendPrice(ctx, model.PriceSample{
		Company: "https://acme.test", AvgPrice: &avg, Quantity: 4, Currency: "€",
	}))
	require.NoError(t, st.AppendPrice(ctx, model.PriceSample{
		Company: "https://acme.test", Quantity: 0, Currency: "€",
	}))

	samples, err := st.ListPrice(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.NotNil(t, samples[0].AvgPrice)
	assert.Equal(t, 12.5, *samples[0].AvgPrice)
	assert.Nil(t, samples[1].AvgPrice, "nil average survives the round trip")
	assert.Equal(t, 0, samples[1].Quantity)
}

func TestCSVDir_ContactRoundTrip(t *testing.T) {
	st := newTestCSVDir(t)
	ctx := context.Background()

	contact := model.ContactInfo{
		Company:    "https://acme.test",
		SourcePage: "https://acme.test/impressum",
		Phones:     []string{"+43 1 234 567"},
		Emails:     []string{"office@acme.test"},
	}
	require.NoError(t, st.AppendContact(ctx, contact))

	contacts, err := st.ListContact(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, contact, contacts[0])
}

func TestCSVDir_MissingTableIsNotFound(t *testing.T) {
	st := newTestCSVDir(t)

	_, err := st.ListGeneral(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.ListPrice(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSVDir_HeaderWrittenOnce(t *testing.T) {
	st := newTestCSVDir(t)
	ctx := context.Background()

	require.NoError(t, st.AppendPrice(ctx, model.PriceSample{Company: "a.test", Quantity: 1}))
	require.NoError(t, st.AppendPrice(ctx, model.PriceSample{Company: "b.test", Quantity: 2}))

	data, err := os.ReadFile(filepath.Join(st.Dir(), model.KindPrice.TableFile()))
	require.NoError(t, err)
	assert.Equal(t, 3, len(splitLines(string(data))), "header plus two rows")
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
