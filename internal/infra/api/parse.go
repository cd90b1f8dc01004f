package api

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/collector/internal/core/domain"
)

// rawRow is one time-series entry as the vendor ships it: every value is a
// string.
type rawRow struct {
	Open     string `json:"1. open"`
	High     string `json:"2. high"`
	Low      string `json:"3. low"`
	Close    string `json:"4. close"`
	AdjClose string `json:"5. adjusted close"`
	Volume   string `json:"5. volume"`
	Volume6  string `json:"6. volume"`
}

// parseSeries decodes a vendor response body into candles sorted ascending
// by date. Vendor error and throttle payloads come back as 200s with a
// sentinel key, so they are detected here rather than from the status code.
func parseSeries(op string, req domain.Request, body []byte) ([]domain.Candle, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, transient(op, req.Symbol, 0, "malformed response body", err)
	}
	if len(envelope) == 0 {
		return nil, transient(op, req.Symbol, 0, "empty response body", nil)
	}

	if raw, ok := envelope["Error Message"]; ok {
		return nil, fatal(op, req.Symbol, 0, "vendor error: "+sentinelText(raw), nil)
	}
	if raw, ok := envelope["Note"]; ok {
		return nil, classifyVendorNote(op, req.Symbol, sentinelText(raw))
	}
	if raw, ok := envelope["Information"]; ok {
		return nil, classifyVendorNote(op, req.Symbol, sentinelText(raw))
	}

	seriesRaw, ok := envelope[seriesKeys[req.Endpoint]]
	if !ok {
		return nil, transient(op, req.Symbol, 0, "response missing time series", nil)
	}

	var series map[string]rawRow
	if err := json.Unmarshal(seriesRaw, &series); err != nil {
		return nil, transient(op, req.Symbol, 0, "malformed time series", err)
	}

	candles := make([]domain.Candle, 0, len(series))
	for dateStr, row := range series {
		c, err := parseCandle(req.Symbol, dateStr, row)
		if err != nil {
			return nil, fatal(op, req.Symbol, 0, "unparseable row "+dateStr, err)
		}
		candles = append(candles, c)
	}

	// The client guarantees ascending date order even when the upstream
	// response is unordered.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Date.Before(candles[j].Date)
	})
	return candles, nil
}

func parseCandle(symbol, dateStr string, row rawRow) (domain.Candle, error) {
	layout := "2006-01-02"
	if strings.Contains(dateStr, ":") {
		layout = "2006-01-02 15:04:05"
	}
	date, err := time.Parse(layout, dateStr)
	if err != nil {
		return domain.Candle{}, err
	}

	c := domain.Candle{Symbol: symbol, Date: date}
	if c.Open, err = strconv.ParseFloat(row.Open, 64); err != nil {
		return domain.Candle{}, err
	}
	if c.High, err = strconv.ParseFloat(row.High, 64); err != nil {
		return domain.Candle{}, err
	}
	if c.Low, err = strconv.ParseFloat(row.Low, 64); err != nil {
		return domain.Candle{}, err
	}
	if c.Close, err = strconv.ParseFloat(row.Close, 64); err != nil {
		return domain.Candle{}, err
	}

	volStr := row.Volume
	if volStr == "" {
		volStr = row.Volume6
	}
	if c.Volume, err = strconv.ParseInt(volStr, 10, 64); err != nil {
		return domain.Candle{}, err
	}

	if row.AdjClose != "" {
		if c.AdjClose, err = strconv.ParseFloat(row.AdjClose, 64); err != nil {
			return domain.Candle{}, err
		}
	} else {
		c.AdjClose = c.Close
	}
	return c, nil
}

// classifyVendorNote distinguishes the vendor's short-window throttle note
// from a daily cap notice. Both arrive as HTTP 200.
func classifyVendorNote(op, symbol, note string) *Error {
	lower := strings.ToLower(note)
	if strings.Contains(lower, "per day") || strings.Contains(lower, "daily") ||
		strings.Contains(lower, "premium") {
		return quotaExceeded(op, symbol, "vendor daily cap: "+note, nil)
	}
	// "call frequency" style notes roll over within a minute.
	return transient(op, symbol, 0, "vendor throttled: "+note, nil)
}

func sentinelText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}
