package model

// Kind enumerates the observation kinds the pipeline produces. The set is
// closed: each kind has a statically known table schema, so stores and the
// report builder never discover tables by naming convention at runtime.
type Kind string

const (
	KindGeneralInfo Kind = "generalinfo"
	KindPrice       Kind = "price"
	KindContact     Kind = "contact"
)

// AllKinds returns every observation kind in table order.
func AllKinds() []Kind {
	return []Kind{KindGeneralInfo, KindPrice, KindContact}
}

// Standard column names shared by the flat-file tables and the report.
const (
	ColCompanyURL = "company_url"
	ColLanguage   = "language"
	ColB2BWords   = "tagged_by_b2b_words"
	ColPayments   = "payments"
	ColWebshopURL = "webshop_urls"
	ColWebshopSys = "webshop_system"
	ColTech       = "technologies"
	ColSocial     = "social_media"

	ColAvgPrice = "products_avg_price"
	ColQuantity = "products_quantity"
	ColCurrency = "currency"

	ColContactURL = "contact_information_url"
	ColPhone      = "phone"
	ColEmail      = "email"
)

// Columns returns the flat-table column layout for the kind. The company
// URL is always the first column.
func (k Kind) Columns() []string {
	switch k {
	case KindGeneralInfo:
		return []string{
			ColCompanyURL, ColLanguage, ColB2BWords, ColPayments,
			ColWebshopURL, ColWebshopSys, ColTech, ColSocial,
		}
	case KindPrice:
		return []string{ColCompanyURL, ColAvgPrice, ColQuantity, ColCurrency}
	case KindContact:
		return []string{ColCompanyURL, ColContactURL, ColPhone, ColEmail}
	}
	return nil
}

// TableFile returns the flat-file name backing the kind.
func (k Kind) TableFile() string {
	return string(k) + ".csv"
}
