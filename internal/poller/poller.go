// Package poller drives the feed decoders on a fixed-delay cadence and
// commits results to the store. A dead feed never crashes or blocks the
// service: every failure is logged, the previous value retained, and
// the cycle retried at the next tick indefinitely.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rtd-gateway/internal/market"
	"rtd-gateway/internal/rtd"
	"rtd-gateway/internal/store"
)

// RankingFetcher refreshes the broker ranking.
type RankingFetcher interface {
	Fetch(ctx context.Context) (market.BrokerRanking, error)
}

// QuoteFetcher decodes the quote for one symbol.
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbol string) (market.Quote, error)
}

type Poller struct {
	interval time.Duration
	ranking  RankingFetcher
	quotes   QuoteFetcher
	universe []string
	st       *store.Store
	log      *slog.Logger
}

func New(interval time.Duration, ranking RankingFetcher, quotes QuoteFetcher, universe []string, st *store.Store, logger *slog.Logger) *Poller {
	return &Poller{
		interval: interval,
		ranking:  ranking,
		quotes:   quotes,
		universe: universe,
		st:       st,
		log:      logger,
	}
}

// Run polls until ctx is cancelled. Fixed delay: the next cycle starts
// one interval after the current one finishes, so refreshes never
// overlap.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("poller started",
		slog.Duration("interval", p.interval),
		slog.Int("universe", len(p.universe)),
	)
	for {
		p.Cycle(ctx)
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return
		case <-time.After(p.interval):
		}
	}
}

// Cycle runs one refresh: ranking first, then the quote universe. The
// two halves are committed independently; either may fail without
// touching the other.
func (p *Poller) Cycle(ctx context.Context) {
	start := time.Now()

	if r, err := p.ranking.Fetch(ctx); err != nil {
		p.log.Error("ranking refresh failed", slog.String("err", err.Error()))
	} else {
		p.st.ReplaceRanking(r)
	}

	quotes, skipped, err := p.fetchQuotes(ctx)
	if err != nil {
		p.log.Error("quotes refresh abandoned", slog.String("err", err.Error()))
	} else {
		p.st.ReplaceQuotes(quotes)
		p.log.Info("poll cycle complete",
			slog.Int("quotes", len(quotes)),
			slog.Int("skipped", skipped),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// fetchQuotes walks the universe sequentially. A protocol or decode
// failure skips that symbol only; a transport failure abandons the
// whole batch so the previous list is retained.
func (p *Poller) fetchQuotes(ctx context.Context) ([]market.Quote, int, error) {
	out := make([]market.Quote, 0, len(p.universe))
	skipped := 0
	for _, symbol := range p.universe {
		q, err := p.quotes.Fetch(ctx, symbol)
		if err != nil {
			var te *rtd.TransportError
			if errors.As(err, &te) {
				return nil, skipped, err
			}
			p.log.Warn("quote skipped",
				slog.String("symbol", symbol),
				slog.String("err", err.Error()),
			)
			skipped++
			continue
		}
		out = append(out, q)
	}
	return out, skipped, nil
}
