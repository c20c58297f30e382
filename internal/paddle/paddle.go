// Package paddle holds the wire types and signature check for Paddle
// payment webhooks.
package paddle

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// EventTransactionCompleted is the only event type this system acts on. All
// other events are acknowledged and ignored so the provider does not retry
// them.
const EventTransactionCompleted = "transaction.completed"

// Event is the webhook envelope Paddle posts.
type Event struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Data      Transaction `json:"data"`
}

// Transaction is the payload of a transaction event.
type Transaction struct {
	ID           string      `json:"id"`
	Status       string      `json:"status"`
	CurrencyCode string      `json:"currency_code"`
	CustomData   *CustomData `json:"custom_data"`
	Customer     *Customer   `json:"customer,omitempty"`
	Details      *Details    `json:"details,omitempty"`
}

// CustomData carries the metadata this system attached at checkout time.
type CustomData struct {
	PackageName string `json:"packageName"`
	FirebaseUID string `json:"firebaseUid"`
	UserEmail   string `json:"userEmail"`
}

// Customer is the provider's view of the paying customer.
type Customer struct {
	Email string `json:"email"`
}

// Details holds transaction totals.
type Details struct {
	Totals *Totals `json:"totals,omitempty"`
}

// Totals holds the charged amounts as decimal strings.
type Totals struct {
	Total string `json:"total"`
}

// VerifySignature checks a Paddle-Signature header ("ts=...;h1=...") against
// the raw request body. The signed payload is "<ts>:<body>" and h1 is its
// hex-encoded HMAC-SHA256 under the webhook secret.
func VerifySignature(header string, body []byte, secret string) error {
	var ts, h1 string
	for _, part := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "h1":
			h1 = value
		}
	}
	if ts == "" || h1 == "" {
		return fmt.Errorf("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte(":"))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(want), []byte(h1)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
