package api

import (
	"net/url"

	"github.com/vietddude/collector/internal/core/domain"
)

// endpointFunctions maps each endpoint kind to the vendor function name.
var endpointFunctions = map[domain.EndpointKind]string{
	domain.EndpointDaily:         "TIME_SERIES_DAILY",
	domain.EndpointDailyAdjusted: "TIME_SERIES_DAILY_ADJUSTED",
	domain.EndpointIntraday:      "TIME_SERIES_INTRADAY",
}

// seriesKeys maps each endpoint kind to the JSON key holding its rows.
var seriesKeys = map[domain.EndpointKind]string{
	domain.EndpointDaily:         "Time Series (Daily)",
	domain.EndpointDailyAdjusted: "Time Series (Daily)",
	domain.EndpointIntraday:      "Time Series (5min)",
}

// buildQuery assembles the query string for one request. Template params
// come last so callers can override outputsize etc.
func buildQuery(req domain.Request, apiKey string) url.Values {
	q := url.Values{}
	q.Set("function", endpointFunctions[req.Endpoint])
	q.Set("symbol", req.Symbol)
	q.Set("apikey", apiKey)
	if req.Endpoint == domain.EndpointIntraday {
		q.Set("interval", "5min")
	}
	for k, v := range req.Params {
		q.Set(k, v)
	}
	return q
}
