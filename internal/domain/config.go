package domain

// KeyPrefix namespaces every key this service writes to the key-value store.
const KeyPrefix = "policyqa:"

// DefaultBatchSize is the number of texts encoded per provider call.
const DefaultBatchSize = 16
