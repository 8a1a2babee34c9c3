package models

import "titandash/pkg/meta"

// PriceData is a 24h ticker snapshot for a single symbol.
type PriceData struct {
	Price      float64 `json:"price"`
	Change24h  float64 `json:"change24h"`
	Volume24h  float64 `json:"volume24h"`
	High24h    float64 `json:"high24h"`
	Low24h     float64 `json:"low24h"`
	LastUpdate int64   `json:"lastUpdate"`
}

// MarketPrices maps symbol to its latest price snapshot.
type MarketPrices map[string]PriceData

// PricesResult carries prices together with their provenance.
type PricesResult struct {
	Prices MarketPrices   `json:"prices"`
	Meta   meta.Signature `json:"meta"`
}

// FearGreedIndex is a market sentiment reading.
type FearGreedIndex struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
	LastUpdate     int64  `json:"lastUpdate"`
}

// FearGreedResult carries the index together with its provenance.
type FearGreedResult struct {
	Index FearGreedIndex `json:"index"`
	Meta  meta.Signature `json:"meta"`
}
