package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Built-in keyword lists. German-first with English equivalents; the
// crawl targets are AT/DE company sites.
var (
	defaultPaymentKeywords = []string{
		"mastercard", "visa", "paypal", "klarna", "sepa", "sofort",
		"apple", "amazon", "afterpay",
	}

	defaultB2BKeywords = []string{
		"großkunde", "geschäftskunde", "geschäftskunden", "großhändler",
		"großhandel", "gewerbliche kunden", "wholesale", "b2b", "b-to-b",
		"reseller", "business customer", "business", "trade account",
		"trade-account", "companies", "institutions",
	}

	defaultWebshopSystems = []string{
		"magento", "woocommerce", "shopware", "bigcommerce", "epages",
		"jtl shop", "oxid", "spryker", "commercetools",
		"sap commerce cloud", "plentymarkets", "shopify",
	}

	defaultWebshopLinkWords = []string{
		"warenkorb", "einkaufswagen", "jetzt bezahlen", "zahlungsmethoden",
		"zahlungsarten", "cart", "basket", "checkout", "pay now",
		"payment methods", "shop", "online",
	}

	defaultCurrencySymbols = []string{"$", "EUR", "€", "GBP", "£"}

	// Austria and Germany.
	defaultPhoneCountryCodes = []string{"43", "49"}
)

// lexiconFile is the on-disk shape of an external lexicon override.
// Only the lists present in the file replace the built-in ones.
type lexiconFile struct {
	PaymentKeywords   []string `yaml:"payment_keywords"`
	B2BKeywords       []string `yaml:"b2b_keywords"`
	WebshopSystems    []string `yaml:"webshop_systems"`
	WebshopLinkWords  []string `yaml:"webshop_link_words"`
	CurrencySymbols   []string `yaml:"currency_symbols"`
	PhoneCountryCodes []string `yaml:"phone_country_codes"`
}

// applyFile overlays lists from a YAML lexicon file onto the config.
func (l *LexiconConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "config: read lexicon %s", path)
	}

	var lf lexiconFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return eris.Wrapf(err, "config: parse lexicon %s", path)
	}

	if len(lf.PaymentKeywords) > 0 {
		l.PaymentKeywords = lf.PaymentKeywords
	}
	if len(lf.B2BKeywords) > 0 {
		l.B2BKeywords = lf.B2BKeywords
	}
	if len(lf.WebshopSystems) > 0 {
		l.WebshopSystems = lf.WebshopSystems
	}
	if len(lf.WebshopLinkWords) > 0 {
		l.WebshopLinkWords = lf.WebshopLinkWords
	}
	if len(lf.CurrencySymbols) > 0 {
		l.CurrencySymbols = lf.CurrencySymbols
	}
	if len(lf.PhoneCountryCodes) > 0 {
		l.PhoneCountryCodes = lf.PhoneCountryCodes
	}

	return nil
}
