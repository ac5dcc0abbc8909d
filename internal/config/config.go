package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Feed is the RTD endpoint and its per-connection timeouts. The quote
// and ranking sub-protocols historically run with different read
// timeouts, so they are configured separately.
type Feed struct {
	Host                 string `yaml:"host"`
	Port                 int    `yaml:"port"`
	DialTimeoutMS        int    `yaml:"dial_timeout_ms"`
	QuoteReadTimeoutMS   int    `yaml:"quote_read_timeout_ms"`
	RankingReadTimeoutMS int    `yaml:"ranking_read_timeout_ms"`
}

type Config struct {
	Port           int      `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	Feed           Feed     `yaml:"feed"`
	PollIntervalMS int      `yaml:"poll_interval_ms"`
	PushIntervalMS int      `yaml:"push_interval_ms"`
	RankingSymbol  string   `yaml:"ranking_symbol"`
	Futures        []string `yaml:"futures"`
	Equities       []string `yaml:"equities"`
}

func defaults() Config {
	return Config{
		Port:     4000,
		LogLevel: "info",
		Feed: Feed{
			Host:                 "127.0.0.1",
			Port:                 12002,
			DialTimeoutMS:        2000,
			QuoteReadTimeoutMS:   2000,
			RankingReadTimeoutMS: 1000,
		},
		PollIntervalMS: 2000,
		PushIntervalMS: 1000,
		RankingSymbol:  "WDOFUT",
		Futures: []string{
			"WDOFUT", "DOLFUT", "WINFUT", "INDFUT",
			"DI1F26", "DI1F27", "DI1F28", "DI1F29", "DI1F30", "DI1F31", "DI1F32",
			"DI1F33", "DI1F34", "DI1F35", "DI1F36",
		},
		Equities: []string{
			"ALOS3", "ABEV3", "ASAI3", "AURE3", "AMOB3", "AZUL4", "AZZA3", "B3SA3", "BBSE3",
			"BBDC3", "BBDC4", "BRAP4", "BBAS3", "BRKM5", "BRAV3", "BRFS3", "BPAC11", "CXSE3",
			"CRFB3", "CCRO3", "CMIG4", "COGN3", "CPLE6", "CSAN3", "CPFE3", "CMIN3", "CVCB3",
			"CYRE3", "ELET3", "ELET6", "EMBR3", "ENGI11", "ENEV3", "EGIE3", "EQTL3", "FLRY3",
			"GGBR4", "GOAU4", "NTCO3", "HAPV3", "HYPE3", "IGTI11", "IRBR3", "ISAE4", "ITSA4",
			"ITUB4", "JBSS3", "KLBN11", "RENT3", "LREN3", "LWSA3", "MGLU3", "POMO4", "MRFG3",
			"BEEF3", "MRVE3", "MULT3", "PCAR3", "PETR3", "PETR4", "RECV3", "PRIO3", "PETZ3",
			"PSSA3", "RADL3", "RAIZ4", "RDOR3", "RAIL3", "SBSP3", "SANB11", "STBP3", "SMTO3",
			"CSNA3", "SLCE3", "SUZB3", "TAEE11", "VIVT3", "TIMS3", "TOTS3", "UGPA3", "USIM5",
			"VALE3", "VAMO3", "VBBR3", "VIVA3", "WEGE3", "YDUQ3",
		},
	}
}

func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	// Validation & normalization
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, errors.New("invalid port")
	}
	if cfg.Feed.Host == "" {
		return cfg, errors.New("feed.host required")
	}
	if cfg.Feed.Port <= 0 || cfg.Feed.Port > 65535 {
		return cfg, errors.New("invalid feed.port")
	}
	if cfg.Feed.DialTimeoutMS < 1 || cfg.Feed.QuoteReadTimeoutMS < 1 || cfg.Feed.RankingReadTimeoutMS < 1 {
		return cfg, errors.New("feed timeouts must be >=1ms")
	}
	if cfg.PollIntervalMS < 1 {
		return cfg, errors.New("poll_interval_ms must be >=1")
	}
	if cfg.PushIntervalMS < 1 {
		return cfg, errors.New("push_interval_ms must be >=1")
	}
	cfg.RankingSymbol = strings.ToUpper(strings.TrimSpace(cfg.RankingSymbol))
	if cfg.RankingSymbol == "" {
		return cfg, errors.New("ranking_symbol required")
	}
	if len(cfg.Futures)+len(cfg.Equities) == 0 {
		return cfg, errors.New("instrument universe is empty")
	}
	return cfg, nil
}

// Universe returns the full polling order: futures first, then the
// equity list.
func (c Config) Universe() []string {
	out := make([]string, 0, len(c.Futures)+len(c.Equities))
	out = append(out, c.Futures...)
	out = append(out, c.Equities...)
	return out
}

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
