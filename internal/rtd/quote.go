package rtd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"rtd-gateway/internal/market"
)

const (
	quotePrefix    = "COT!"
	quoteMinTokens = 89
)

// Positional field table for the COT! response after splitting on '|'.
// Index 0 is the prefix itself. The feed has no field names; these
// offsets are the contract.
const (
	idxLast              = 1
	idxChange            = 2
	idxOpen              = 7
	idxHigh              = 8
	idxLow               = 9
	idxPrevClose         = 10
	idxVolume            = 11
	idxTime              = 12
	idxState             = 18
	idxExpiry            = 19
	idxDaysToExpiry      = 21
	idxBizDaysToExpiry   = 22
	idxChangePct         = 23
	idxDate              = 25
	idxAuctionEnd        = 41
	idxAggBalance        = 52
	idxAggBalanceDay     = 53
	idxAggBalanceNextDay = 54
	idxBalanceIndicator  = 62
	idxNegAggBalance     = 69
	idxPtaxP1            = 78
	idxPtaxP2            = 79
	idxPtaxP3            = 80
	idxPtaxP4            = 81
	idxPtaxOfficial      = 82
	idxPtaxFutP1         = 83
	idxPtaxFutP2         = 84
	idxPtaxFutP3         = 85
	idxPtaxFutP4         = 86
	idxPtaxFutOfficial   = 87
	idxIbov              = 88
)

// QuoteDecoder turns one COT exchange into a typed Quote.
type QuoteDecoder struct {
	tr  Transport
	log *slog.Logger
}

func NewQuoteDecoder(tr Transport, logger *slog.Logger) *QuoteDecoder {
	return &QuoteDecoder{tr: tr, log: logger}
}

// Fetch requests and decodes the quote for one symbol. It returns a
// *TransportError if the exchange failed, a *ProtocolError if the
// response is not a usable quote frame, and a *DecodeError if any
// mandatory numeric field does not parse.
func (d *QuoteDecoder) Fetch(ctx context.Context, symbol string) (market.Quote, error) {
	resp, err := d.tr.Send(ctx, fmt.Sprintf("COT$S|%s#", symbol))
	if err != nil {
		return market.Quote{}, err
	}
	return decodeQuote(symbol, resp)
}

func decodeQuote(symbol, resp string) (market.Quote, error) {
	if !strings.HasPrefix(resp, quotePrefix) {
		return market.Quote{}, &ProtocolError{Symbol: symbol, Reason: "missing COT! prefix"}
	}
	tok := strings.Split(resp, "|")
	if len(tok) < quoteMinTokens {
		return market.Quote{}, &ProtocolError{
			Symbol: symbol,
			Reason: fmt.Sprintf("short response: %d tokens", len(tok)),
		}
	}

	// The eight mandatory fields: any parse failure voids the symbol.
	mandatory := map[string]int{
		"last":       idxLast,
		"change":     idxChange,
		"open":       idxOpen,
		"high":       idxHigh,
		"low":        idxLow,
		"prev_close": idxPrevClose,
		"volume":     idxVolume,
		"change_pct": idxChangePct,
	}
	vals := make(map[string]float64, len(mandatory))
	for name, i := range mandatory {
		v, ok := parseLocaleFloat(tok[i])
		if !ok {
			return market.Quote{}, &DecodeError{Symbol: symbol, Field: name, Raw: tok[i]}
		}
		vals[name] = v
	}

	q := market.Quote{
		Symbol:    symbol,
		Last:      vals["last"],
		Change:    vals["change"],
		ChangePct: vals["change_pct"],
		Open:      vals["open"],
		High:      vals["high"],
		Low:       vals["low"],
		PrevClose: vals["prev_close"],
		Volume:    vals["volume"],

		Date:       strings.TrimSpace(tok[idxDate]),
		Time:       strings.TrimSpace(tok[idxTime]),
		State:      strings.TrimSpace(tok[idxState]),
		AuctionEnd: strings.TrimSpace(tok[idxAuctionEnd]),

		Expiry:               strings.TrimSpace(tok[idxExpiry]),
		DaysToExpiry:         int(optionalFloat(tok[idxDaysToExpiry])),
		BusinessDaysToExpiry: int(optionalFloat(tok[idxBizDaysToExpiry])),

		AggBalance:        optionalFloat(tok[idxAggBalance]),
		AggBalanceDay:     optionalFloat(tok[idxAggBalanceDay]),
		AggBalanceNextDay: optionalFloat(tok[idxAggBalanceNextDay]),
		NegAggBalance:     optionalFloat(tok[idxNegAggBalance]),
		BalanceIndicator:  optionalFloat(tok[idxBalanceIndicator]),

		PtaxP1:       optionalFloat(tok[idxPtaxP1]),
		PtaxP2:       optionalFloat(tok[idxPtaxP2]),
		PtaxP3:       optionalFloat(tok[idxPtaxP3]),
		PtaxP4:       optionalFloat(tok[idxPtaxP4]),
		PtaxOfficial: optionalFloat(tok[idxPtaxOfficial]),

		PtaxFutP1:       optionalFloat(tok[idxPtaxFutP1]),
		PtaxFutP2:       optionalFloat(tok[idxPtaxFutP2]),
		PtaxFutP3:       optionalFloat(tok[idxPtaxFutP3]),
		PtaxFutP4:       optionalFloat(tok[idxPtaxFutP4]),
		PtaxFutOfficial: optionalFloat(tok[idxPtaxFutOfficial]),

		Ibov: optionalFloat(tok[idxIbov]),
	}
	// Derived, never taken from the feed.
	q.Gap = q.Open - q.PrevClose
	return q, nil
}

// parseLocaleFloat converts a Brazilian-formatted number ("5.780,00")
// to a float64: thousands dots are stripped, the decimal comma becomes
// a dot.
func parseLocaleFloat(s string) (float64, bool) {
	n := strings.ReplaceAll(s, ".", "")
	n = strings.ReplaceAll(n, ",", ".")
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// optionalFloat is parseLocaleFloat with a 0.0 default for the fields
// whose failure does not void the quote.
func optionalFloat(s string) float64 {
	v, _ := parseLocaleFloat(s)
	return v
}
