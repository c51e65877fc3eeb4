// Package oauth implements the primary credential lifecycle: file-backed
// persistence of the user's Google OAuth token set, refresh via the token
// endpoint, the interactive authorization-code flow with a local redirect
// listener on a fixed pre-registered port, and best-effort revocation.
//
// The Manager is the single owner of the credential. Its precedence is
// cache, then on-disk record, then refresh, then interactive flow; load and
// refresh failures are explicit fallback branches, not errors surfaced to
// the caller.
package oauth
