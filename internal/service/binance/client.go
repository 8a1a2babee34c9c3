package binance

import (
	"context"
	"strconv"

	"titandash/internal/domain/models"
	drepo "titandash/internal/domain/repository"
	xhttp "titandash/pkg/http"
)

// ticker24h is the Binance 24hr ticker payload. Numeric fields arrive
// as strings on the wire.
type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	Volume             string `json:"volume"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	CloseTime          int64  `json:"closeTime"`
}

// Client fetches market data from the Binance REST API.
type Client struct {
	hc *xhttp.Client
}

// NewClient creates a Binance market source over the shared HTTP client.
func NewClient(hc *xhttp.Client) drepo.MarketSource {
	return &Client{hc: hc}
}

// Ticker24h returns the rolling 24h ticker for one symbol.
func (c *Client) Ticker24h(ctx context.Context, symbol string) (*models.PriceData, error) {
	var t ticker24h
	err := c.hc.GetJSON(ctx, "/api/v3/ticker/24hr", map[string]string{"symbol": symbol}, &t)
	if err != nil {
		return nil, err
	}
	return &models.PriceData{
		Price:      parseFloat(t.LastPrice),
		Change24h:  parseFloat(t.PriceChangePercent),
		Volume24h:  parseFloat(t.Volume),
		High24h:    parseFloat(t.HighPrice),
		Low24h:     parseFloat(t.LowPrice),
		LastUpdate: t.CloseTime,
	}, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
