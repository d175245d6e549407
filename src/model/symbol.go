package model

import (
	"regexp"
	"strings"
)

type AssetCategory string

const (
	CategoryCrypto       AssetCategory = "crypto"
	CategoryCurrencyPair AssetCategory = "currency_pair"
	CategoryEquity       AssetCategory = "equity"
)

var cryptoSymbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}(USDT|USDC|USD|BTC|ETH)$`)

// CategoryForSymbol infers the asset category from the instrument
// naming convention: slash-delimited pairs are currency pairs,
// crypto-styled symbols (quote-asset suffix) are crypto, anything
// else is treated as a bare equity ticker.
func CategoryForSymbol(symbol string) AssetCategory {
	if strings.Contains(symbol, "/") {
		return CategoryCurrencyPair
	}
	if cryptoSymbolPattern.MatchString(strings.ToUpper(symbol)) {
		return CategoryCrypto
	}
	return CategoryEquity
}
