package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the user's primary identity-provider token set. It is owned
// by the Manager, persisted as the sole record in the credential store, and
// mutated only on refresh.
type Credential struct {
	// AccessToken is the opaque bearer token for the identity provider.
	AccessToken string

	// IDToken is the OIDC identity token, when the provider issued one.
	// It is the preferred identity assertion for the secondary exchange.
	IDToken string

	// RefreshToken allows renewing an expired access token without user
	// interaction.
	RefreshToken string

	// Expiry is the absolute expiry of the access token. Zero means no
	// known expiry.
	Expiry time.Time

	// TokenURI is the provider token endpoint used for refresh.
	TokenURI string

	// ClientID and ClientSecret identify this application to the
	// provider.
	ClientID     string
	ClientSecret string

	// Scopes is the authorized scope set.
	Scopes []string
}

// Expired reports whether the access token is past its expiry. Credentials
// without a known expiry are treated as not expired; downstream 401
// handling catches the rare stale case.
func (c *Credential) Expired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !time.Now().Before(c.Expiry)
}

// Valid reports whether the credential can be used as-is.
func (c *Credential) Valid() bool {
	return c != nil && c.AccessToken != "" && !c.Expired()
}

// fromOAuth2Token builds a Credential from a token endpoint response,
// carrying over the endpoint and client identity so the credential can be
// refreshed later without re-reading the client-secrets file.
func fromOAuth2Token(tok *oauth2.Token, conf *oauth2.Config) *Credential {
	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		TokenURI:     conf.Endpoint.TokenURL,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       conf.Scopes,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		cred.IDToken = idToken
	}
	return cred
}
