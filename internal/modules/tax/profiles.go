// Package tax estimates capital gains taxes and trading fees for proposed
// sales, keyed by jurisdiction and ticker shape.
package tax

// CountryTaxProfile is one jurisdiction's default capital gains treatment.
// The table is immutable reference data injected at construction.
type CountryTaxProfile struct {
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	CapitalGainsTaxRate float64 `json:"capital_gains_tax_rate"`
	TradeFeePercent     float64 `json:"trade_fee_percent"`
	Currency            string  `json:"currency"`
}

// DefaultCountryProfiles returns the built-in jurisdiction table.
// Rates are long-run retail defaults, not advice; per-asset and per-call
// overrides take precedence (see Calculator.Impact).
func DefaultCountryProfiles() []CountryTaxProfile {
	return []CountryTaxProfile{
		{Code: "KR", Name: "South Korea", CapitalGainsTaxRate: 0.22, TradeFeePercent: 0.00015, Currency: "KRW"},
		{Code: "US", Name: "United States", CapitalGainsTaxRate: 0.22, TradeFeePercent: 0.0025, Currency: "USD"},
		{Code: "JP", Name: "Japan", CapitalGainsTaxRate: 0.20315, TradeFeePercent: 0.001, Currency: "JPY"},
		{Code: "CN", Name: "China", CapitalGainsTaxRate: 0.20, TradeFeePercent: 0.001, Currency: "CNY"},
		{Code: "GB", Name: "United Kingdom", CapitalGainsTaxRate: 0.20, TradeFeePercent: 0.001, Currency: "GBP"},
		{Code: "DE", Name: "Germany", CapitalGainsTaxRate: 0.26375, TradeFeePercent: 0.001, Currency: "EUR"},
		{Code: "FR", Name: "France", CapitalGainsTaxRate: 0.30, TradeFeePercent: 0.001, Currency: "EUR"},
		{Code: "CA", Name: "Canada", CapitalGainsTaxRate: 0.25, TradeFeePercent: 0.0015, Currency: "CAD"},
		{Code: "AU", Name: "Australia", CapitalGainsTaxRate: 0.225, TradeFeePercent: 0.0015, Currency: "AUD"},
		{Code: "SG", Name: "Singapore", CapitalGainsTaxRate: 0.0, TradeFeePercent: 0.001, Currency: "SGD"},
		{Code: "HK", Name: "Hong Kong", CapitalGainsTaxRate: 0.0, TradeFeePercent: 0.001, Currency: "HKD"},
	}
}
