package tax

import (
	"math"
	"regexp"
	"strings"
)

// TickerClass is the coarse asset class inferred from a ticker's shape.
type TickerClass string

const (
	TickerKRStock TickerClass = "kr_stock"
	TickerUSStock TickerClass = "us_stock"
	TickerCrypto  TickerClass = "crypto"
	TickerOther   TickerClass = "other"
)

// Ticker-class tax and fee rates. All rates are fractions of the sell
// amount; the US capital gains rate applies only to gains above the
// annual exemption.
const (
	krTransactionTaxRate = 0.0018  // Korean securities transaction tax
	krBrokerageFeeRate   = 0.00015 // Korean discount brokerage
	usBrokerageFeeRate   = 0.0025  // US trade, incl. FX spread
	usCapitalGainsRate   = 0.22    // overseas equity capital gains
	cryptoBrokerageRate  = 0.001   // domestic crypto exchange
	otherBrokerageRate   = 0.001

	// USAnnualGainExemption is the annual overseas-equity gain exemption
	// in KRW. Gains below it are untaxed; gains above are taxed on the
	// excess only.
	USAnnualGainExemption = 2_500_000
)

// Estimate is the ticker-class tax estimate for a proposed sale. All tax
// and fee amounts are floored to whole currency units.
type Estimate struct {
	AssetTypeLabel  string      `json:"asset_type_label"`
	TickerClass     TickerClass `json:"ticker_class"`
	SellAmount      float64     `json:"sell_amount"`
	Gain            float64     `json:"gain"`
	TransactionTax  float64     `json:"transaction_tax"`
	BrokerageFee    float64     `json:"brokerage_fee"`
	CapitalGainsTax float64     `json:"capital_gains_tax"`
	TotalCost       float64     `json:"total_cost"`
	NetProceeds     float64     `json:"net_proceeds"`
	CostRate        float64     `json:"cost_rate"`
	Note            string      `json:"note,omitempty"`
}

var (
	krNumericTicker = regexp.MustCompile(`^\d{6}$`)
	usAlphaTicker   = regexp.MustCompile(`^[A-Za-z]{1,5}$`)
)

// cryptoSymbols are well-known coin tickers matched exactly.
var cryptoSymbols = map[string]bool{
	"BTC": true, "ETH": true, "XRP": true, "SOL": true, "ADA": true,
	"DOGE": true, "DOT": true, "AVAX": true, "MATIC": true, "LINK": true,
	"TRX": true, "BCH": true, "LTC": true, "ATOM": true, "USDT": true,
	"USDC": true,
}

// ClassifyTicker infers the coarse asset class from a ticker's shape:
// 6-digit numeric or a .KS/.KQ suffix is a Korean listing, known coin
// symbols or a -USD/USDT suffix is crypto, 1-5 plain letters is a US
// listing, anything else is other.
func ClassifyTicker(ticker string) TickerClass {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return TickerOther
	}

	if krNumericTicker.MatchString(t) || strings.HasSuffix(t, ".KS") || strings.HasSuffix(t, ".KQ") {
		return TickerKRStock
	}
	if cryptoSymbols[t] || strings.HasSuffix(t, "-USD") || strings.HasSuffix(t, "USDT") {
		return TickerCrypto
	}
	if usAlphaTicker.MatchString(t) {
		return TickerUSStock
	}
	return TickerOther
}

// EstimateSale estimates taxes and fees for selling sellAmount of a
// holding, using only the ticker shape and the position's price history.
//
// Rules by class:
//   - kr_stock: 0.18% transaction tax + 0.015% brokerage, no capital
//     gains tax for regular listed-equity holders.
//   - us_stock: 0.25% brokerage + 22% capital gains tax on the gain
//     exceeding the annual exemption. Losses are never taxed.
//   - crypto: 0.1% brokerage only; capital gains taxation is deferred
//     (noted on the estimate).
//   - other: 0.1% brokerage only.
func EstimateSale(ticker string, sellAmount, avgPrice, currentPrice, quantity float64) Estimate {
	class := ClassifyTicker(ticker)

	est := Estimate{
		TickerClass: class,
		SellAmount:  sellAmount,
	}
	if sellAmount <= 0 {
		est.AssetTypeLabel = labelFor(class)
		return est
	}

	// Realized gain on the sold portion: quantity sold at the current
	// price against the same quantity at the average purchase price.
	gain := 0.0
	if avgPrice > 0 && currentPrice > 0 && quantity > 0 {
		soldQty := sellAmount / currentPrice
		if soldQty > quantity {
			soldQty = quantity
		}
		gain = sellAmount - soldQty*avgPrice
	}
	est.Gain = math.Floor(gain)

	switch class {
	case TickerKRStock:
		est.AssetTypeLabel = "Korean equity"
		est.TransactionTax = math.Floor(sellAmount * krTransactionTaxRate)
		est.BrokerageFee = math.Floor(sellAmount * krBrokerageFeeRate)
		est.Note = "No capital gains tax for regular listed-equity holders."
	case TickerUSStock:
		est.AssetTypeLabel = "US equity"
		est.BrokerageFee = math.Floor(sellAmount * usBrokerageFeeRate)
		if gain > USAnnualGainExemption {
			est.CapitalGainsTax = math.Floor((gain - USAnnualGainExemption) * usCapitalGainsRate)
		}
		est.Note = "22% capital gains tax on gains above the annual exemption."
	case TickerCrypto:
		est.AssetTypeLabel = "Crypto"
		est.BrokerageFee = math.Floor(sellAmount * cryptoBrokerageRate)
		est.Note = "Virtual asset capital gains taxation is deferred; only the exchange fee applies."
	default:
		est.AssetTypeLabel = "Other"
		est.BrokerageFee = math.Floor(sellAmount * otherBrokerageRate)
	}

	est.TotalCost = est.TransactionTax + est.BrokerageFee + est.CapitalGainsTax
	est.NetProceeds = sellAmount - est.TotalCost
	est.CostRate = est.TotalCost / sellAmount

	return est
}

func labelFor(class TickerClass) string {
	switch class {
	case TickerKRStock:
		return "Korean equity"
	case TickerUSStock:
		return "US equity"
	case TickerCrypto:
		return "Crypto"
	default:
		return "Other"
	}
}
