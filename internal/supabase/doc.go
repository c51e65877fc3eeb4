// Package supabase exchanges the primary identity-provider credential for a
// short-lived Supabase access token and caches it, together with the
// resolved user identity, for the lifetime of the process.
package supabase
