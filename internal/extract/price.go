package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// PriceStats is the reduced price signal of a single product page.
type PriceStats struct {
	AvgPrice *float64
	Quantity int
	Currency string
}

// PricePattern bundles the compiled expressions for one currency-symbol
// set. Compile it once and share it across pages.
type PricePattern struct {
	currency *regexp.Regexp
	before   *regexp.Regexp
	after    *regexp.Regexp
}

// CompilePricePattern builds the shared currency and adjacent-number
// expressions for the given symbols. A number is a short run of digits
// with an optional "."/"," decimal separator sitting directly before or
// after a symbol, allowing one space in between.
func CompilePricePattern(symbols []string) (*PricePattern, error) {
	if len(symbols) == 0 {
		return nil, eris.New("extract: no currency symbols configured")
	}

	// Longest symbols first so "EUR" wins over any shorter overlap.
	quoted := make([]string, len(symbols))
	copy(quoted, symbols)
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	for i, s := range quoted {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(s))
	}
	alt := strings.Join(quoted, "|")

	currency, err := regexp.Compile(alt)
	if err != nil {
		return nil, eris.Wrap(err, "extract: compile currency pattern")
	}

	// Checked against the text on either side of each symbol occurrence,
	// so a number sandwiched between two occurrences counts for both and
	// the scan never swallows a symbol past an adjacent number.
	const num = `\d{1,10}(?:[.,]\d{1,10})?`
	before, err := regexp.Compile(`(` + num + `) ?$`)
	if err != nil {
		return nil, eris.Wrap(err, "extract: compile preceding-number pattern")
	}
	after, err := regexp.Compile(`^ ?(` + num + `)`)
	if err != nil {
		return nil, eris.Wrap(err, "extract: compile following-number pattern")
	}

	return &PricePattern{currency: currency, before: before, after: after}, nil
}

// ExtractPrices scans body for the first currency symbol and averages all
// numeric tokens adjacent to any symbol. The second return value is false
// when no symbol occurs at all: the page carries no price signal and no
// observation should be produced. With a symbol but no parsable numbers
// the stats report Quantity 0 and a nil average. Individual tokens that
// fail to parse are skipped, never fatal.
func ExtractPrices(body string, pat *PricePattern) (PriceStats, bool) {
	lower := strings.ToLower(body)

	symbol := pat.currency.FindString(lower)
	if symbol == "" {
		return PriceStats{}, false
	}

	stats := PriceStats{Currency: symbol}

	// Each number token is counted once even when it touches two symbol
	// occurrences, keyed by its position in the body.
	seen := make(map[int]bool)
	var sum float64
	count := func(start int, token string) {
		if seen[start] {
			return
		}
		seen[start] = true
		token = strings.ReplaceAll(token, ",", ".")
		value, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return
		}
		sum += value
		stats.Quantity++
	}
	for _, loc := range pat.currency.FindAllStringIndex(lower, -1) {
		if m := pat.before.FindStringSubmatchIndex(lower[:loc[0]]); m != nil {
			count(m[2], lower[m[2]:m[3]])
		}
		if m := pat.after.FindStringSubmatchIndex(lower[loc[1]:]); m != nil {
			count(loc[1]+m[2], lower[loc[1]+m[2]:loc[1]+m[3]])
		}
	}

	if stats.Quantity > 0 {
		avg := math.Round(sum/float64(stats.Quantity)*100) / 100
		stats.AvgPrice = &avg
	}
	return stats, true
}
