// Package store provides durable key/value storage for session credentials.
// Implementations satisfy the session.CredentialStore contract: per-key atomic
// writes, immediately visible to subsequent reads, no expiry logic.
package store
