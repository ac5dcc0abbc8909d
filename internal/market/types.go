package market

// Quote is the normalized state of one instrument as decoded from the
// RTD feed. Prices and balances come in Brazilian locale formatting on
// the wire and are normalized to float64 here.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Last      float64 `json:"last"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	PrevClose float64 `json:"prev_close"`
	Volume    float64 `json:"volume"`

	Date       string `json:"date"`
	Time       string `json:"time"`
	State      string `json:"state"`
	AuctionEnd string `json:"auction_end"`

	Expiry               string `json:"expiry"`
	DaysToExpiry         int    `json:"days_to_expiry"`
	BusinessDaysToExpiry int    `json:"business_days_to_expiry"`

	// Gap is derived (open - previous close), never read from the feed.
	Gap float64 `json:"gap"`

	AggBalance        float64 `json:"agg_balance"`
	AggBalanceDay     float64 `json:"agg_balance_day"`
	AggBalanceNextDay float64 `json:"agg_balance_next_day"`
	NegAggBalance     float64 `json:"neg_agg_balance"`
	BalanceIndicator  float64 `json:"balance_indicator"`

	PtaxP1       float64 `json:"ptax_p1"`
	PtaxP2       float64 `json:"ptax_p2"`
	PtaxP3       float64 `json:"ptax_p3"`
	PtaxP4       float64 `json:"ptax_p4"`
	PtaxOfficial float64 `json:"ptax_official"`

	PtaxFutP1       float64 `json:"ptax_fut_p1"`
	PtaxFutP2       float64 `json:"ptax_fut_p2"`
	PtaxFutP3       float64 `json:"ptax_fut_p3"`
	PtaxFutP4       float64 `json:"ptax_fut_p4"`
	PtaxFutOfficial float64 `json:"ptax_fut_official"`

	Ibov float64 `json:"ibov"`
}

// Broker is one participant at one ranking level.
type Broker struct {
	Name   string `json:"name"`
	Volume int64  `json:"volume"`
}

// BrokerRanking holds up to 5 buyers and 5 sellers, best level first.
// A side may be shorter when the feed returned garbage for a level.
type BrokerRanking struct {
	Buyers  []Broker `json:"buyers"`
	Sellers []Broker `json:"sellers"`
}

// EmptyRanking returns a ranking with non-nil sides so it serializes as
// [] rather than null before the first successful poll.
func EmptyRanking() BrokerRanking {
	return BrokerRanking{Buyers: []Broker{}, Sellers: []Broker{}}
}

// Snapshot is the combined value served to consumers. Its two halves
// are committed independently by the poller.
type Snapshot struct {
	Ranking BrokerRanking `json:"ranking"`
	Quotes  []Quote       `json:"quotes"`
}
