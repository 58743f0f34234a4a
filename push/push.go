// Package push delivers a single notification to a set of device tokens through a
// push gateway. Delivery is advisory: callers log failures and never retry.
package push

import "context"

// Message is one logical push notification fanned out to every token in Tokens
type Message struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]interface{}
	Sound  string
	Badge  *int
}

// TicketError is a per-token failure reported inside an otherwise accepted request
type TicketError struct {
	Token   string
	Message string
	Reason  string
}

// Result summarises one gateway submission
type Result struct {
	Sent   int
	Failed int
	Errors []TicketError
}

// Gateway sends one message to all of its tokens. A returned error means the whole
// submission was rejected; per-token failures are reported in Result.Errors.
type Gateway interface {
	Send(ctx context.Context, msg Message) (Result, error)
}
