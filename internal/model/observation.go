package model

// CompanyID is the normalized URL identifying one crawled company site.
// It is the join key across every observation kind and must be non-empty
// and stable for the lifetime of a crawl run.
type CompanyID string

// PageRole classifies what a crawled page is expected to contain and
// therefore which extractors run over its body.
type PageRole string

const (
	RoleLanding PageRole = "landing"
	RoleProduct PageRole = "product"
	RoleContact PageRole = "contact"
)

// Page is a single crawled page body handed over by the crawl engine.
// The body is already decoded to text; Role decides extractor routing.
type Page struct {
	Company CompanyID `json:"company"`
	URL     string    `json:"url"`
	Role    PageRole  `json:"role"`
	Body    string    `json:"body"`
}

// GeneralInfo is the per-landing-page observation of a company: declared
// language, B2B/payment/web-shop lexicon hits, fingerprinted technologies
// grouped by category, and social links. Exactly one is produced per
// crawled landing page and it is never mutated afterwards.
type GeneralInfo struct {
	Company        CompanyID           `json:"company"`
	Language       string              `json:"language,omitempty"`
	WebshopURLs    []string            `json:"webshop_urls,omitempty"`
	Payments       []string            `json:"payments,omitempty"`
	WebshopSystems []string            `json:"webshop_systems,omitempty"`
	B2BKeywords    []string            `json:"b2b_keywords,omitempty"`
	Technologies   map[string][]string `json:"technologies,omitempty"`
	SocialLinks    []string            `json:"social_links,omitempty"`
}

// TaggedB2B reports whether any B2B keyword matched the landing page.
func (g GeneralInfo) TaggedB2B() bool {
	return len(g.B2BKeywords) > 0
}

// PriceSample is the price observation for one product page: the average
// of all prices found next to a currency symbol, how many there were, and
// which symbol anchored them. AvgPrice is nil when a currency symbol was
// present but no parsable number sat next to it (Quantity is 0 then).
type PriceSample struct {
	Company  CompanyID `json:"company"`
	AvgPrice *float64  `json:"avg_price,omitempty"`
	Quantity int       `json:"quantity"`
	Currency string    `json:"currency,omitempty"`
}

// ContactInfo is the contact observation for one imprint/contact page.
// Phones and Emails are deduplicated within the page.
type ContactInfo struct {
	Company    CompanyID `json:"company"`
	SourcePage string    `json:"source_page"`
	Phones     []string  `json:"phones,omitempty"`
	Emails     []string  `json:"emails,omitempty"`
}
