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
	sideBuy  = 1
	sideSell = 2

	rankingLevels = 5
)

// RankingDecoder builds the 5-level buyer/seller ranking for one fixed
// instrument. Each refresh is 20 round trips: for every level and side,
// one exchange for the participant name (Cor) and one for the traded
// quantity (Qtd), each on a fresh connection.
type RankingDecoder struct {
	tr     Transport
	symbol string
	log    *slog.Logger
}

func NewRankingDecoder(tr Transport, symbol string, logger *slog.Logger) *RankingDecoder {
	return &RankingDecoder{tr: tr, symbol: symbol, log: logger}
}

// Fetch runs the full refresh. A transport failure aborts the whole
// refresh (the caller keeps the previous ranking); a level whose name
// comes back empty is logged and skipped without aborting the rest.
func (d *RankingDecoder) Fetch(ctx context.Context) (market.BrokerRanking, error) {
	ranking := market.EmptyRanking()

	for level := 1; level <= rankingLevels; level++ {
		for _, side := range []int{sideBuy, sideSell} {
			nameResp, err := d.tr.Send(ctx, fmt.Sprintf("BRKS$S|%s|%d|%d|7|Cor#", d.symbol, level, side))
			if err != nil {
				return market.BrokerRanking{}, err
			}
			qtyResp, err := d.tr.Send(ctx, fmt.Sprintf("BRKS$S|%s|%d|%d|7|Qtd#", d.symbol, level, side))
			if err != nil {
				return market.BrokerRanking{}, err
			}

			name := NormalizeBrokerName(lastField(nameResp))
			if name == "" {
				d.log.Warn("ranking level skipped",
					slog.String("symbol", d.symbol),
					slog.Int("level", level),
					slog.Int("side", side),
				)
				continue
			}
			volume, err := strconv.ParseInt(lastField(qtyResp), 10, 64)
			if err != nil {
				volume = 0
			}

			b := market.Broker{Name: name, Volume: volume}
			if side == sideBuy {
				ranking.Buyers = append(ranking.Buyers, b)
			} else {
				ranking.Sellers = append(ranking.Sellers, b)
			}
		}
	}
	return ranking, nil
}

// lastField extracts the payload of a BRKS response: last ';'-separated
// token, trailing '#' sentinel stripped, whitespace trimmed.
func lastField(resp string) string {
	parts := strings.Split(resp, ";")
	last := parts[len(parts)-1]
	return strings.TrimSpace(strings.ReplaceAll(last, "#", ""))
}

// nameRule is one normalization step for raw participant names. Rules
// are tried in order; the first match wins.
type nameRule struct {
	match func(string) bool
	apply func(string) string
}

var nameRules = []nameRule{
	{
		// "BROKERCO|JOHN DOE" -> "JOHN DOE"
		match: func(s string) bool { return strings.Contains(s, "|") },
		apply: func(s string) string {
			return strings.TrimSpace(s[strings.LastIndex(s, "|")+1:])
		},
	},
	{
		// "12345-ACME CORRETORA" -> "ACME CORRETORA"
		match: func(s string) bool { return strings.Contains(s, "-") },
		apply: func(s string) string {
			parts := strings.Split(s, "-")
			if len(parts) > 1 {
				return strings.TrimSpace(parts[1])
			}
			return s
		},
	},
}

// NormalizeBrokerName maps a raw feed token to a display name using the
// first matching rule; unmatched tokens pass through unchanged.
func NormalizeBrokerName(raw string) string {
	for _, r := range nameRules {
		if r.match(raw) {
			return r.apply(raw)
		}
	}
	return raw
}
