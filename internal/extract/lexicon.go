package extract

import "strings"

// MatchKeywords returns the subset of keywords occurring in body as a
// case-insensitive substring. Matching is substring-based, not tokenized:
// a keyword matches even inside a larger word. Keyword-list order is
// preserved and duplicates in the list are collapsed.
func MatchKeywords(body string, keywords []string) []string {
	lower := strings.ToLower(body)

	var matched []string
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		if strings.Contains(lower, k) {
			matched = append(matched, k)
			seen[k] = struct{}{}
		}
	}
	return matched
}
