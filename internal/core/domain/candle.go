package domain

import "time"

// Candle represents one OHLCV row for a symbol on a trading day.
type Candle struct {
	Symbol   string
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// FetchStatus indicates whether a fetch produced usable data.
type FetchStatus string

const (
	FetchStatusSuccess FetchStatus = "success"
	FetchStatusFailed  FetchStatus = "failed"
)

// Dataset is the result of one logical fetch: the candles for a symbol,
// sorted ascending by date.
type Dataset struct {
	Symbol    string
	Candles   []Candle
	FetchedAt time.Time
	Status    FetchStatus
}

// EndpointKind selects which vendor endpoint a request targets. Each kind
// maps to a fixed set of query parameters and a parse strategy.
type EndpointKind string

const (
	EndpointDaily         EndpointKind = "daily"
	EndpointDailyAdjusted EndpointKind = "daily_adjusted"
	EndpointIntraday      EndpointKind = "intraday"
)

// Valid reports whether the endpoint kind is known.
func (k EndpointKind) Valid() bool {
	switch k {
	case EndpointDaily, EndpointDailyAdjusted, EndpointIntraday:
		return true
	}
	return false
}

// Request describes one logical fetch. Immutable once issued.
type Request struct {
	Symbol   string
	Endpoint EndpointKind
	Params   map[string]string
}
