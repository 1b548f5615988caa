package output

import "context"

// OutboundEmail is one transactional email. ReplyTo carries the
// tracking-token address so contractor replies route back to the right
// conversation.
type OutboundEmail struct {
	To      string
	Subject string
	Text    string
	ReplyTo string
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, email OutboundEmail) (messageID string, err error)
}

// SMSSender sends one SMS and returns the provider's message SID.
type SMSSender interface {
	Send(ctx context.Context, toPhone, body string) (sid string, err error)
}
