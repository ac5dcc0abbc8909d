package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtd-gateway/internal/config"
	"rtd-gateway/internal/poller"
	"rtd-gateway/internal/rtd"
	"rtd-gateway/internal/server"
	"rtd-gateway/internal/store"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config.yaml: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel)

	logger.Info("rtd-gateway starting",
		slog.Int("port", cfg.Port),
		slog.String("feed", fmt.Sprintf("%s:%d", cfg.Feed.Host, cfg.Feed.Port)),
		slog.String("ranking_symbol", cfg.RankingSymbol),
		slog.Int("universe", len(cfg.Universe())),
	)

	// Shared snapshot store; the poller writes, every consumer reads.
	st := store.New()

	// Feed clients. Quote and ranking exchanges run with their own
	// read timeouts.
	dialTO := time.Duration(cfg.Feed.DialTimeoutMS) * time.Millisecond
	quoteClient := rtd.NewClient(cfg.Feed.Host, cfg.Feed.Port, dialTO,
		time.Duration(cfg.Feed.QuoteReadTimeoutMS)*time.Millisecond)
	rankingClient := rtd.NewClient(cfg.Feed.Host, cfg.Feed.Port, dialTO,
		time.Duration(cfg.Feed.RankingReadTimeoutMS)*time.Millisecond)

	quotes := rtd.NewQuoteDecoder(quoteClient, logger)
	ranking := rtd.NewRankingDecoder(rankingClient, cfg.RankingSymbol, logger)

	p := poller.New(
		time.Duration(cfg.PollIntervalMS)*time.Millisecond,
		ranking, quotes, cfg.Universe(), st, logger,
	)

	srv := server.NewServer(st, time.Duration(cfg.PushIntervalMS)*time.Millisecond, logger)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p.Run(ctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.Int("port", cfg.Port))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down...")
		shCtx, shCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer shCancel()
		return httpSrv.Shutdown(shCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("exit", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("bye")
}
