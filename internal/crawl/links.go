package crawl

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/leadspider-cli/internal/model"
)

var (
	productPathPattern = regexp.MustCompile(`collection|product|produkte|kategorien|categories`)
	contactPathPattern = regexp.MustCompile(`impressum|kontakt|contact`)
	socialHostPattern  = regexp.MustCompile(`linkedin|facebook|youtube|twitter|instagram|xing`)
	webshopURLPattern  = regexp.MustCompile(`cart|shop|online`)
)

// LinkClassifier decides what a hyperlink found on a landing page is:
// a product page to follow, a contact page to follow, a social profile,
// or a webshop entry point. Product, contact and webshop links only
// count when they stay on the company's own host.
type LinkClassifier struct {
	linkWords []string
}

// NewLinkClassifier builds a classifier; linkWords are the anchor texts
// that mark a link as a webshop entry ("shop", "Warenkorb", ...).
func NewLinkClassifier(linkWords []string) *LinkClassifier {
	words := make([]string, 0, len(linkWords))
	for _, w := range linkWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return &LinkClassifier{linkWords: words}
}

// SubPageRole reports whether link is a same-host product or contact
// page worth a follow-up request.
func (lc *LinkClassifier) SubPageRole(pageURL, link string) (model.PageRole, bool) {
	if !sameHost(pageURL, link) {
		return "", false
	}
	lower := strings.ToLower(link)
	switch {
	case productPathPattern.MatchString(lower):
		return model.RoleProduct, true
	case contactPathPattern.MatchString(lower):
		return model.RoleContact, true
	}
	return "", false
}

// IsSocial reports whether link points at a known social network host.
func (lc *LinkClassifier) IsSocial(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	return socialHostPattern.MatchString(strings.ToLower(u.Host))
}

// IsWebshop reports whether link looks like a webshop entry point,
// either by its URL shape or by its anchor text.
func (lc *LinkClassifier) IsWebshop(pageURL, link, text string) bool {
	if sameHost(pageURL, link) && webshopURLPattern.MatchString(strings.ToLower(link)) {
		return true
	}
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, w := range lc.linkWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func sameHost(pageURL, link string) bool {
	p, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	l, err := url.Parse(link)
	if err != nil {
		return false
	}
	return l.Host != "" && strings.EqualFold(p.Host, l.Host)
}
