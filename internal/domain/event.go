package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEventNotFound indicates that the event is not found.
var ErrEventNotFound = errors.New("event not found")

// EventCashout tags the event recorded when money leaves an account.
const EventCashout = "cashout"

// FinancialTransaction holds a monetary movement.
type FinancialTransaction struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
}

// CashoutPayload is the payload of a cashout event.
type CashoutPayload struct {
	AccountPayer         int64                `json:"accountPayer"`
	FinancialTransaction FinancialTransaction `json:"financialTransaction"`
}

// Event is a named domain event envelope with an arbitrary JSON payload.
type Event struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
