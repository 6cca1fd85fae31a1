package cache

import "strings"

const (
	pricesPrefix = "prices"
	pairsPrefix  = "pairs"
	indexPrefix  = "index"
)

// Path joins key segments into a dot delimited key, skipping empty segments.
func Path(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ".")
}

// PriceKey addresses one coin price point, e.g. prices.USDT.BTC.
func PriceKey(quoteCoin, coinName string) string {
	return Path(pricesPrefix, quoteCoin, coinName)
}

// PairsKey addresses the normalized pairs of one exchange.
func PairsKey(exchangeID string) string {
	return Path(pairsPrefix, exchangeID)
}

// IndexKey addresses the list of coin names known for a quote coin.
func IndexKey(quoteCoin string) string {
	return Path(indexPrefix, quoteCoin)
}
