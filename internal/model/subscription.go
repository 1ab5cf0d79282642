package model

import (
	"errors"
	"strings"
)

// ErrInvalidSubscription is returned when a subscription lacks its prefix or counter key.
var ErrInvalidSubscription = errors.New("subscription requires prefix and counter key")

// Subscription identifies one webhook integration instance. Prefix is both
// the literal text inserted into renamed tasks and the key of the stored
// secret; CounterKey names the sequence the ticket numbers come from.
type Subscription struct {
	Prefix     string
	CounterKey string
}

// Validate reports whether both identifiers are present.
func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Prefix) == "" || strings.TrimSpace(s.CounterKey) == "" {
		return ErrInvalidSubscription
	}
	return nil
}

// Marker is the substring a task name carries once it has been numbered.
func (s Subscription) Marker() string {
	return s.Prefix + "-"
}
