package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type DecisionRequest struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"required"`
	Personality string `query:"personality" json:"personality" validate:"omitempty,oneof=conservative neutral aggressive"`
}

type RefreshRequest struct {
	Symbol string `json:"symbol" validate:"required"`
}

type HistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
