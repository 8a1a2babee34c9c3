package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type PricesRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
}

type TransactionsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
