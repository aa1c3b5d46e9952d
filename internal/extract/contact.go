package extract

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// emailPattern matches the standard local-part @ domain shape.
var emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)

// ContactPattern holds the compiled phone expression for one
// country-code allow-list.
type ContactPattern struct {
	phone *regexp.Regexp
}

// CompileContactPattern builds the phone expression for the allowed
// country codes: a "+" and one of the codes, then a flexible run of
// digits broken by spaces, parentheses, slashes or hyphens. The search
// is deliberately fuzzy; imprint pages format numbers every which way.
func CompileContactPattern(countryCodes []string) (*ContactPattern, error) {
	if len(countryCodes) == 0 {
		return nil, eris.New("extract: no phone country codes configured")
	}

	codes := make([]string, len(countryCodes))
	for i, c := range countryCodes {
		codes[i] = regexp.QuoteMeta(c)
	}
	pattern := `\+ ?(?:` + strings.Join(codes, "|") + `)` +
		`(?: *[(-]? *\d(?:[ \d]*\d)?)? *(?:[)-] *)?\d+ *(?:[/)-] *)?\d+ *(?:[/)-] *)?\d+(?: *- *\d+)?`

	phone, err := regexp.Compile(pattern)
	if err != nil {
		return nil, eris.Wrap(err, "extract: compile phone pattern")
	}
	return &ContactPattern{phone: phone}, nil
}

// ExtractContacts finds phone numbers and email addresses in body. Both
// result slices are deduplicated; match order within the page is kept but
// carries no meaning.
func ExtractContacts(body string, pat *ContactPattern) (phones, emails []string) {
	lower := strings.ToLower(body)
	phones = dedup(pat.phone.FindAllString(lower, -1))
	emails = dedup(emailPattern.FindAllString(lower, -1))
	return phones, emails
}

// dedup removes duplicates preserving first occurrence. Returns nil for
// empty input so observations omit the field entirely.
func dedup(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
