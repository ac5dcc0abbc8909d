package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rtd-gateway/internal/market"
	"rtd-gateway/internal/rtd"
	"rtd-gateway/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type rankingFunc func(ctx context.Context) (market.BrokerRanking, error)

func (f rankingFunc) Fetch(ctx context.Context) (market.BrokerRanking, error) { return f(ctx) }

type quoteFunc func(ctx context.Context, symbol string) (market.Quote, error)

func (f quoteFunc) Fetch(ctx context.Context, symbol string) (market.Quote, error) {
	return f(ctx, symbol)
}

func okRanking() rankingFunc {
	return func(ctx context.Context) (market.BrokerRanking, error) {
		return market.BrokerRanking{
			Buyers:  []market.Broker{{Name: "FRESH", Volume: 1}},
			Sellers: []market.Broker{{Name: "FRESH", Volume: 1}},
		}, nil
	}
}

func okQuotes() quoteFunc {
	return func(ctx context.Context, symbol string) (market.Quote, error) {
		return market.Quote{Symbol: symbol, Last: 10}, nil
	}
}

func TestCycleCommitsBothHalves(t *testing.T) {
	st := store.New()
	p := New(time.Second, okRanking(), okQuotes(), []string{"A", "B", "C"}, st, testLogger())

	p.Cycle(context.Background())

	require.Len(t, st.Quotes(), 3)
	require.Equal(t, "FRESH", st.Ranking().Buyers[0].Name)
}

func TestCycleSkipsMalformedSymbolsIndividually(t *testing.T) {
	st := store.New()
	bad := map[string]bool{"B": true, "D": true}
	quotes := quoteFunc(func(ctx context.Context, symbol string) (market.Quote, error) {
		if bad[symbol] {
			return market.Quote{}, &rtd.ProtocolError{Symbol: symbol, Reason: "short response"}
		}
		return market.Quote{Symbol: symbol, Last: 10}, nil
	})
	p := New(time.Second, okRanking(), quotes, []string{"A", "B", "C", "D", "E"}, st, testLogger())

	p.Cycle(context.Background())

	got := st.Quotes()
	require.Len(t, got, 3)
	require.Equal(t, "A", got[0].Symbol)
	require.Equal(t, "C", got[1].Symbol)
	require.Equal(t, "E", got[2].Symbol)
}

func TestCycleTransportFailureRetainsPreviousQuotes(t *testing.T) {
	st := store.New()
	st.ReplaceQuotes([]market.Quote{{Symbol: "OLD", Last: 1}})

	quotes := quoteFunc(func(ctx context.Context, symbol string) (market.Quote, error) {
		if symbol == "B" {
			return market.Quote{}, &rtd.TransportError{Op: "dial", Err: errors.New("refused")}
		}
		return market.Quote{Symbol: symbol, Last: 10}, nil
	})
	p := New(time.Second, okRanking(), quotes, []string{"A", "B", "C"}, st, testLogger())

	p.Cycle(context.Background())

	got := st.Quotes()
	require.Len(t, got, 1)
	require.Equal(t, "OLD", got[0].Symbol)
	// The ranking half still committed.
	require.Equal(t, "FRESH", st.Ranking().Buyers[0].Name)
}

func TestCycleRankingFailureDoesNotBlockQuotes(t *testing.T) {
	st := store.New()
	st.ReplaceRanking(market.BrokerRanking{
		Buyers:  []market.Broker{{Name: "OLD", Volume: 1}},
		Sellers: []market.Broker{},
	})

	ranking := rankingFunc(func(ctx context.Context) (market.BrokerRanking, error) {
		return market.BrokerRanking{}, &rtd.TransportError{Op: "dial", Err: errors.New("refused")}
	})
	p := New(time.Second, ranking, okQuotes(), []string{"A", "B"}, st, testLogger())

	p.Cycle(context.Background())

	require.Equal(t, "OLD", st.Ranking().Buyers[0].Name)
	require.Len(t, st.Quotes(), 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	st := store.New()
	calls := 0
	ranking := rankingFunc(func(ctx context.Context) (market.BrokerRanking, error) {
		calls++
		return market.EmptyRanking(), nil
	})
	p := New(5*time.Millisecond, ranking, okQuotes(), []string{"A"}, st, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	require.GreaterOrEqual(t, calls, 2)
}
