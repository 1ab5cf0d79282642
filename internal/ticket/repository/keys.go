package repository

import "asana-ticket-numbering/internal/model"

// SecretKey is the key-value store key holding a subscription's secret.
// The "{prefix}_hook_secret" layout is shared with deployments that
// predate the SQL stores.
func SecretKey(sub model.Subscription) string {
	return sub.Prefix + "_hook_secret"
}

// CounterKey is the key-value store key of a subscription's sequence.
func CounterKey(sub model.Subscription) string {
	return sub.CounterKey
}
