package report

import (
	"sort"
	"strings"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// ecommerceCategory is the fingerprint category treated as a second
// source for the web-shop system.
const ecommerceCategory = "Ecommerce"

// combinedColumn unions the keyword-derived and fingerprint-derived
// web-shop system values.
const combinedColumn = "web_system/ecommerce"

// taggedB2BColumn carries the derived boolean next to the raw keyword hits.
const taggedB2BColumn = "tagged_as_b2b"

// BuildGeneralTable reconciles general-info observations into one row per
// company. The technology category map is flattened into sibling columns,
// web-shop system and Ecommerce values are lower-cased, the keyword-derived
// system is null-coalesced from the Ecommerce one, and both sources are
// unioned into the combined column.
func BuildGeneralTable(infos []model.GeneralInfo) *Table {
	// Collect the union of technology categories first so every row
	// shares one flattened column set. Ecommerce stays a regular sibling
	// column on top of feeding the combined value.
	catSet := make(map[string]struct{})
	for _, info := range infos {
		for cat := range info.Technologies {
			catSet[cat] = struct{}{}
		}
	}
	categories := make([]string, 0, len(catSet))
	for cat := range catSet {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	cols := []string{
		model.ColLanguage, model.ColB2BWords, taggedB2BColumn,
		model.ColPayments, model.ColWebshopURL, model.ColWebshopSys,
		model.ColSocial,
	}
	cols = append(cols, categories...)
	cols = append(cols, combinedColumn)
	t := NewTable(cols...)

	for _, info := range infos {
		row := Row{}
		if info.Language != "" {
			row[model.ColLanguage] = info.Language
		}
		if len(info.B2BKeywords) > 0 {
			row[model.ColB2BWords] = strings.Join(info.B2BKeywords, ",")
			row[taggedB2BColumn] = "true"
		} else {
			row[taggedB2BColumn] = "false"
		}
		if len(info.Payments) > 0 {
			row[model.ColPayments] = strings.Join(info.Payments, ",")
		}
		if len(info.WebshopURLs) > 0 {
			row[model.ColWebshopURL] = strings.Join(info.WebshopURLs, ",")
		}
		if len(info.SocialLinks) > 0 {
			row[model.ColSocial] = strings.Join(info.SocialLinks, ",")
		}

		for cat, names := range info.Technologies {
			row[cat] = strings.Join(names, ", ")
		}

		system := lowerOrNil(joinOrNil(info.WebshopSystems))
		ecommerce := lowerOrNil(row[ecommerceCategory])
		if ecommerce != nil {
			row[ecommerceCategory] = *ecommerce
		}

		// Keyword-derived system falls back to the fingerprint-derived
		// one only when absent, never overwriting a present value.
		if system == nil {
			system = ecommerce
		}
		if system != nil {
			row[model.ColWebshopSys] = *system
		}

		if combined := unionJoin(system, ecommerce); combined != nil {
			row[combinedColumn] = *combined
		}

		t.Set(info.Company, row)
	}
	return t
}

func joinOrNil(values []string) Value {
	if len(values) == 0 {
		return nil
	}
	return strings.Join(values, ", ")
}

func lowerOrNil(v Value) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	s = strings.ToLower(s)
	return &s
}

// unionJoin deduplicates the comma-separated fragments of both inputs and
// rejoins them with ",". Nil when both inputs are absent.
func unionJoin(a, b *string) *string {
	var fragments []string
	seen := make(map[string]struct{})
	for _, src := range []*string{a, b} {
		if src == nil {
			continue
		}
		for _, f := range strings.Split(*src, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			fragments = append(fragments, f)
		}
	}
	if fragments == nil {
		return nil
	}
	joined := strings.Join(fragments, ",")
	return &joined
}
