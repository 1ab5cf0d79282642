package ticket

import "asana-ticket-numbering/internal/model"

// HandshakeInput is the input for webhook activation.
type HandshakeInput struct {
	Subscription model.Subscription
	Secret       string
}

// AuthenticateInput is the input for delivery signature verification.
type AuthenticateInput struct {
	Subscription model.Subscription
	Body         []byte // exact raw request body
	Signature    string // hex HMAC-SHA256 from the signature header
}

// ProcessEventsInput is a verified event batch.
type ProcessEventsInput struct {
	Subscription model.Subscription
	Events       []model.Event
}

// RenamedTask records one successful rename.
type RenamedTask struct {
	TaskID  string
	Number  int64
	NewName string
}

// ProcessEventsOutput summarises one processing pass.
type ProcessEventsOutput struct {
	Received int           // events in the batch
	Ignored  int           // not a task name change
	Skipped  int           // already carried the marker
	Failed   int           // fetch, counter or rename failure
	Renamed  []RenamedTask // in completion order
}
