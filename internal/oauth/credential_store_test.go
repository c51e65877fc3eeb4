package oauth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "token.json")
	store := NewCredentialStore(path)

	expiry := time.Now().Add(1 * time.Hour).UTC().Truncate(time.Second)
	cred := &Credential{
		AccessToken:  "access-token",
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
		Expiry:       expiry,
		TokenURI:     "https://oauth2.googleapis.com/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{"openid", "email"},
	}

	if err := store.Save(cred); err != nil {
		t.Fatalf("Failed to save credential: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load credential: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected a credential, got nil")
	}

	if loaded.AccessToken != cred.AccessToken {
		t.Errorf("Expected access token %q, got %q", cred.AccessToken, loaded.AccessToken)
	}
	if loaded.RefreshToken != cred.RefreshToken {
		t.Errorf("Expected refresh token %q, got %q", cred.RefreshToken, loaded.RefreshToken)
	}
	if loaded.IDToken != cred.IDToken {
		t.Errorf("Expected id token %q, got %q", cred.IDToken, loaded.IDToken)
	}
	if !loaded.Expiry.Equal(expiry) {
		t.Errorf("Expected expiry %v, got %v", expiry, loaded.Expiry)
	}
	if loaded.TokenURI != cred.TokenURI {
		t.Errorf("Expected token URI %q, got %q", cred.TokenURI, loaded.TokenURI)
	}
}

func TestCredentialStore_SaveWritesExplicitNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewCredentialStore(path)

	cred := &Credential{AccessToken: "access-only"}
	if err := store.Save(cred); err != nil {
		t.Fatalf("Failed to save credential: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read credential file: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Credential file is not valid JSON: %v", err)
	}

	// Both nullable fields must be present as explicit nulls so the
	// record still classifies as an authorized-user record on load.
	for _, key := range []string{"refresh_token", "id_token"} {
		value, ok := raw[key]
		if !ok {
			t.Errorf("Expected key %q to be present", key)
			continue
		}
		if string(value) != "null" {
			t.Errorf("Expected key %q to be null, got %s", key, value)
		}
	}

	if string(raw["type"]) != `"authorized_user"` {
		t.Errorf("Expected type authorized_user, got %s", raw["type"])
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load credential with null fields: %v", err)
	}
	if loaded.RefreshToken != "" || loaded.IDToken != "" {
		t.Errorf("Expected empty refresh and id tokens, got %q and %q", loaded.RefreshToken, loaded.IDToken)
	}
}

func TestCredentialStore_LoadMissingFile(t *testing.T) {
	store := NewCredentialStore(filepath.Join(t.TempDir(), "does-not-exist.json"))

	cred, err := store.Load()
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if cred != nil {
		t.Errorf("Expected nil credential for missing file, got %+v", cred)
	}
}

func TestCredentialStore_LoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"wrong type", `{"token":"x","refresh_token":null,"type":"service_account"}`},
		{"missing refresh_token key", `{"token":"x","type":"authorized_user"}`},
		{"no access token", `{"refresh_token":null,"id_token":null,"type":"authorized_user"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to write file: %v", err)
			}

			cred, err := NewCredentialStore(path).Load()
			if err == nil {
				t.Error("Expected an error for malformed content")
			}
			if cred != nil {
				t.Errorf("Expected nil credential, got %+v", cred)
			}
		})
	}
}

func TestCredentialStore_LoadAcceptsAccessTokenField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	content := `{"access_token":"alt-token","refresh_token":null,"id_token":null,"type":"authorized_user"}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	cred, err := NewCredentialStore(path).Load()
	if err != nil {
		t.Fatalf("Failed to load credential: %v", err)
	}
	if cred.AccessToken != "alt-token" {
		t.Errorf("Expected access token alt-token, got %q", cred.AccessToken)
	}
}

func TestCredentialStore_DeleteIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewCredentialStore(path)

	if err := store.Save(&Credential{AccessToken: "x"}); err != nil {
		t.Fatalf("Failed to save credential: %v", err)
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("First delete failed: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Second delete should be a no-op, got %v", err)
	}

	cred, err := store.Load()
	if err != nil || cred != nil {
		t.Errorf("Expected absent credential after delete, got %+v, %v", cred, err)
	}
}
