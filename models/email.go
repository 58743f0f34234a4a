package models

// OutboundEmail is a single message handed to the email fallback chain
type OutboundEmail struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html"`
}

// SendEmailRequest is the request body for the email send endpoint. Text is wrapped
// in the generic layout when HTML is empty.
type SendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}
