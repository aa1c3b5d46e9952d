package extract

import "sort"

// TechEntry is the per-technology record returned by the fingerprinting
// service: the categories the technology belongs to.
type TechEntry struct {
	Categories []string `json:"categories"`
}

// NormalizeTechnologies inverts a technology→categories map into a
// category→technology-names map. A technology may declare zero, one or
// many categories; a category with no technologies never appears in the
// output. Names per category are deduplicated and sorted, so the
// inversion is idempotent.
func NormalizeTechnologies(techs map[string]TechEntry) map[string][]string {
	if len(techs) == 0 {
		return nil
	}

	byCategory := make(map[string]map[string]struct{})
	for name, entry := range techs {
		for _, cat := range entry.Categories {
			if cat == "" {
				continue
			}
			if byCategory[cat] == nil {
				byCategory[cat] = make(map[string]struct{})
			}
			byCategory[cat][name] = struct{}{}
		}
	}
	if len(byCategory) == 0 {
		return nil
	}

	out := make(map[string][]string, len(byCategory))
	for cat, names := range byCategory {
		list := make([]string, 0, len(names))
		for n := range names {
			list = append(list, n)
		}
		sort.Strings(list)
		out[cat] = list
	}
	return out
}
