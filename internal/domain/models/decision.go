package models

import "time"

// Action is the final trading action.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Decision is the bounded trading decision produced by the decision engine.
// Pure value type; the engine never persists it.
type Decision struct {
	Symbol       string    `json:"symbol"`
	Action       Action    `json:"action"`
	PositionSize int       `json:"position_size"` // percent of allowed exposure, 0..100
	Confidence   float64   `json:"confidence"`
	Rationale    string    `json:"rationale"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Personality  string    `json:"personality"`
	Summary      string    `json:"summary,omitempty"` // advisory text, never a decision input
	DecidedAt    time.Time `json:"decided_at"`
}
