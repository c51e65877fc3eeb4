package oauth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// credentialRecordType marks a stored record as reconstructable into a
// working user credential. Records with any other type are rejected.
const credentialRecordType = "authorized_user"

// CredentialStore persists a single Credential record to a JSON file.
//
// SECURITY: the file holds live OAuth tokens. It is written with 0600
// permissions and its parent directory is created with 0700. Token values
// are never logged.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store backed by the file at path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the backing file path.
func (s *CredentialStore) Path() string {
	return s.path
}

// storedCredential is the on-disk schema. RefreshToken and IDToken are
// pointers so an unset value serializes as an explicit null rather than
// being omitted: the deserializer requires both keys to be present before
// it classifies the record as an authorized-user record.
type storedCredential struct {
	Token        string     `json:"token"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken *string    `json:"refresh_token"`
	IDToken      *string    `json:"id_token"`
	TokenURI     string     `json:"token_uri"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	Scopes       []string   `json:"scopes"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	Type         string     `json:"type"`
}

// Load reads and parses the stored credential.
//
// A missing file returns (nil, nil): no credential yet. Malformed or
// unclassifiable content returns a non-nil error so the caller can log it
// and branch explicitly; the caller treats that branch the same as absent.
func (s *CredentialStore) Load() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var record storedCredential
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}

	if record.Type != credentialRecordType {
		return nil, fmt.Errorf("credential file has type %q, want %q", record.Type, credentialRecordType)
	}

	// The presence of the refresh_token key, even as null, distinguishes
	// an authorized-user record from arbitrary JSON that happens to carry
	// a token field.
	if record.RefreshToken == nil && !keyPresent(data, "refresh_token") {
		return nil, fmt.Errorf("credential file is missing the refresh_token field")
	}

	accessToken := record.Token
	if accessToken == "" {
		accessToken = record.AccessToken
	}
	if accessToken == "" {
		return nil, fmt.Errorf("credential file has no access token")
	}

	cred := &Credential{
		AccessToken:  accessToken,
		TokenURI:     record.TokenURI,
		ClientID:     record.ClientID,
		ClientSecret: record.ClientSecret,
		Scopes:       record.Scopes,
	}
	if record.RefreshToken != nil {
		cred.RefreshToken = *record.RefreshToken
	}
	if record.IDToken != nil {
		cred.IDToken = *record.IDToken
	}
	if record.Expiry != nil {
		cred.Expiry = *record.Expiry
	}

	return cred, nil
}

// Save serializes the full credential to the backing file, creating parent
// directories as needed. The file is fully written before Save returns.
func (s *CredentialStore) Save(cred *Credential) error {
	if cred == nil {
		return fmt.Errorf("cannot save nil credential")
	}

	record := storedCredential{
		Token:        cred.AccessToken,
		RefreshToken: nullableString(cred.RefreshToken),
		IDToken:      nullableString(cred.IDToken),
		TokenURI:     cred.TokenURI,
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Scopes:       cred.Scopes,
		Type:         credentialRecordType,
	}
	if !cred.Expiry.IsZero() {
		expiry := cred.Expiry.UTC()
		record.Expiry = &expiry
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create credential directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	return nil
}

// Delete removes the backing file. Deleting an absent file is not an error.
func (s *CredentialStore) Delete() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// keyPresent reports whether a top-level key exists in the raw JSON object,
// which json.Unmarshal into a pointer field cannot distinguish from null.
func keyPresent(data []byte, key string) bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	_, ok := raw[key]
	return ok
}
