// Package models defines the bank query responses and the validation result events.
package models

import (
	"encoding/json"

	"balance-schema-service/internal/coin"
)

// BalanceResponse is the response to a balance query.
// Amount always carries the requested denom, possibly with a zero amount.
type BalanceResponse struct {
	Amount coin.Coin `json:"amount"`
}

// SupplyResponse is the response to a supply query.
type SupplyResponse struct {
	Amount coin.Coin `json:"amount"`
}

// AllBalanceResponse is the response to an all-balances query.
type AllBalanceResponse struct {
	Amount coin.Coins `json:"amount"`
}

// Violation is the wire form of a single schema violation.
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Code   string `json:"code"`
}

// ValidationResult is published for every document that reaches the validator.
type ValidationResult struct {
	EventType  string          `json:"eventType"`
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Kind       string          `json:"kind"`
	Valid      bool            `json:"valid"`
	Violations []Violation     `json:"violations,omitempty"`
	ParseError string          `json:"parseError,omitempty"`
	Document   json.RawMessage `json:"document,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

// Event types carried in ValidationResult.EventType.
const (
	EventTypeValid    = "balance.document.valid"
	EventTypeRejected = "balance.document.rejected"
)
