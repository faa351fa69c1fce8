package domain

import "time"

// DefaultGateway is the reserved gateway id for recipients no enabled ruleset
// claimed.
const DefaultGateway = "__default__"

// Message describes one outbound SMS as seen by the routing engine. The
// engine never mutates it; Recipients is copied before the pool is consumed.
type Message struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Recipients []string  `json:"recipients"`
	SendTime   time.Time `json:"send_time"`
}

// RoutingResult is the outcome of one routing pass. The union of all Routes
// values is exactly the original recipient list: every recipient appears in
// exactly one gateway's list.
type RoutingResult struct {
	// Routes maps gateway id to the recipients that gateway should deliver.
	// DefaultGateway holds the unmatched remainder.
	Routes map[string][]string `json:"routes"`
	// Order maps ruleset name to the recipients that ruleset matched, in the
	// order rulesets were applied. DefaultGateway holds the remainder.
	Order map[string][]string `json:"order"`
}

// User identifies the account on whose behalf a message is sent, for
// routing rules and sender-id checks.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
}

// DeliveryReport is a gateway's per-recipient submission report.
type DeliveryReport struct {
	Recipient string `json:"recipient"`
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Gateway   string `json:"gateway"`
}

// MessageResult is the aggregate outcome of delivering one message, possibly
// through several gateways.
type MessageResult struct {
	Status        bool                      `json:"status"`
	CreditsUsed   float64                   `json:"credits_used"`
	CreditBalance float64                   `json:"credit_balance"`
	ErrorMessage  string                    `json:"error_message,omitempty"`
	Reports       map[string]DeliveryReport `json:"reports"`
}

// MergeMessageResults folds several per-gateway results into one aggregate:
// boolean AND of statuses, sum of credits used, last-write-wins for balance
// and error text, union of reports.
func MergeMessageResults(results []*MessageResult) *MessageResult {
	merged := &MessageResult{
		Status:  true,
		Reports: make(map[string]DeliveryReport),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		merged.Status = merged.Status && r.Status
		merged.CreditsUsed += r.CreditsUsed
		merged.CreditBalance = r.CreditBalance
		merged.ErrorMessage = r.ErrorMessage
		for recipient, report := range r.Reports {
			merged.Reports[recipient] = report
		}
	}
	return merged
}
