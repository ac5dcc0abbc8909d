package rtd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// transportFunc adapts a function to the Transport interface for
// scripted exchanges.
type transportFunc func(ctx context.Context, command string) (string, error)

func (f transportFunc) Send(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}

func TestParseLocaleFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.234,56", 1234.56, true},
		{"0,75", 0.75, true},
		{"5.780,00", 5780, true},
		{"-0,25", -0.25, true},
		{"123", 123, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseLocaleFloat(c.in)
		require.Equalf(t, c.ok, ok, "parseLocaleFloat(%q) ok", c.in)
		if c.ok {
			require.Equalf(t, c.want, got, "parseLocaleFloat(%q)", c.in)
		}
	}
}

// quoteTokens builds a minimal well-formed 89-token COT response with
// all mandatory fields parseable.
func quoteTokens() []string {
	tok := make([]string, quoteMinTokens)
	tok[0] = quotePrefix
	tok[idxLast] = "5.780,00"
	tok[idxChange] = "12,50"
	tok[idxOpen] = "105,50"
	tok[idxHigh] = "5.800,00"
	tok[idxLow] = "5.700,00"
	tok[idxPrevClose] = "100,00"
	tok[idxVolume] = "1.000.000,00"
	tok[idxChangePct] = "0,22"
	tok[idxTime] = "15:04:05"
	tok[idxDate] = "27/08/2026"
	tok[idxState] = "ABERTO"
	tok[idxExpiry] = "OUT26"
	tok[idxDaysToExpiry] = "33,00"
	tok[idxBizDaysToExpiry] = "22,00"
	tok[idxPtaxOfficial] = "5,4321"
	tok[idxIbov] = "137.000,00"
	return tok
}

func TestDecodeQuote(t *testing.T) {
	q, err := decodeQuote("WDOFUT", strings.Join(quoteTokens(), "|"))
	require.NoError(t, err)

	require.Equal(t, "WDOFUT", q.Symbol)
	require.Equal(t, 5780.0, q.Last)
	require.Equal(t, 105.5, q.Open)
	require.Equal(t, 100.0, q.PrevClose)
	require.Equal(t, 1000000.0, q.Volume)
	require.Equal(t, q.Open-q.PrevClose, q.Gap)
	require.Equal(t, "15:04:05", q.Time)
	require.Equal(t, "27/08/2026", q.Date)
	require.Equal(t, "ABERTO", q.State)
	require.Equal(t, 33, q.DaysToExpiry)
	require.Equal(t, 22, q.BusinessDaysToExpiry)
	require.Equal(t, 5.4321, q.PtaxOfficial)
	require.Equal(t, 137000.0, q.Ibov)
	// Unset optional numerics default to 0, not an error.
	require.Equal(t, 0.0, q.AggBalance)
	require.Equal(t, 0.0, q.PtaxFutP1)
}

func TestDecodeQuoteMissingPrefix(t *testing.T) {
	_, err := decodeQuote("PETR4", "ERR|no data")
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "PETR4", pe.Symbol)
}

func TestDecodeQuoteShortResponse(t *testing.T) {
	tok := quoteTokens()[:40]
	_, err := decodeQuote("PETR4", strings.Join(tok, "|"))
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestDecodeQuoteMandatoryFieldRejectsSymbol(t *testing.T) {
	tok := quoteTokens()
	tok[idxVolume] = "n/d"
	_, err := decodeQuote("VALE3", strings.Join(tok, "|"))
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "volume", de.Field)
}

func TestQuoteDecoderFetch(t *testing.T) {
	var sent string
	tr := transportFunc(func(ctx context.Context, command string) (string, error) {
		sent = command
		return strings.Join(quoteTokens(), "|"), nil
	})
	d := NewQuoteDecoder(tr, testLogger())

	q, err := d.Fetch(context.Background(), "WDOFUT")
	require.NoError(t, err)
	require.Equal(t, "COT$S|WDOFUT#", sent)
	require.Equal(t, 5780.0, q.Last)
}

func TestQuoteDecoderFetchTransportError(t *testing.T) {
	tr := transportFunc(func(ctx context.Context, command string) (string, error) {
		return "", &TransportError{Op: "dial", Err: errors.New("connection refused")}
	})
	d := NewQuoteDecoder(tr, testLogger())

	_, err := d.Fetch(context.Background(), "WDOFUT")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Contains(t, fmt.Sprint(err), "dial")
}
