// Package logging provides a small structured logging facade over log/slog.
//
// Every log call carries a subsystem name so that output from the OAuth flow,
// the token exchange, and the API client can be told apart in a single stderr
// stream. Token values are never logged, only endpoints and status.
package logging
