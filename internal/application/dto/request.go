package dto

import (
	"errors"
	"strings"
	"unicode"
)

const maxCoinLength = 20

var (
	ErrInvalidQuoteCoin = errors.New("invalid quote coin")
	ErrInvalidCoinName  = errors.New("invalid coin name")
)

// PricesRequest holds the normalized parameters of a prices request
type PricesRequest struct {
	QuoteCoin string
	CoinName  string
}

// NewPricesRequest builds a request from the ?quote= parameter and the
// optional {coinName} path variable. Coins are upper-cased; an empty quote
// falls back to defaultQuote.
func NewPricesRequest(quoteParam, coinName, defaultQuote string) (*PricesRequest, error) {
	quote := strings.ToUpper(strings.TrimSpace(quoteParam))
	if quote == "" {
		quote = strings.ToUpper(defaultQuote)
	}
	if !isCoinSymbol(quote) {
		return nil, ErrInvalidQuoteCoin
	}

	req := &PricesRequest{
		QuoteCoin: quote,
		CoinName:  strings.ToUpper(strings.TrimSpace(coinName)),
	}
	return req, nil
}

// ValidCoinName reports whether the coin could be a listed symbol at all.
// Anything else is reported as not found without touching the cache.
func (r *PricesRequest) ValidCoinName() bool {
	return isCoinSymbol(r.CoinName)
}

func isCoinSymbol(s string) bool {
	if s == "" || len(s) > maxCoinLength {
		return false
	}
	for _, c := range s {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}
