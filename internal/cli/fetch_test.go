package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/topolab/pkg/profile"
)

// withEnv sets environment variables for the test and restores them after.
// An empty value unsets the variable.
func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for key, value := range vars {
		old, had := os.LookupEnv(key)
		if value == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, value)
		}
		t.Cleanup(func() {
			if had {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		})
	}
}

// clearConnectionEnv unsets all NSP_* variables for the test.
func clearConnectionEnv(t *testing.T) {
	t.Helper()
	withEnv(t, map[string]string{envServer: "", envUsername: "", envPassword: "", envProxy: ""})
}

// testProfileStore creates a temp profile store holding one default profile.
func testProfileStore(t *testing.T, name string, p profile.Profile) *profile.Store {
	t.Helper()
	store, err := profile.NewStore(filepath.Join(t.TempDir(), "profiles.toml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.Save(name, p, true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return store
}

func TestResolveConnectionPrecedence(t *testing.T) {
	clearConnectionEnv(t)
	withEnv(t, map[string]string{
		envServer:   "env.example.com",
		envUsername: "envuser",
		envPassword: "envpass",
	})

	store := testProfileStore(t, "lab", profile.Profile{
		Server:   "profile.example.com",
		Username: "profuser",
		Network:  "CustomNet",
		Proxy:    "proxy.example.com:8080",
		Insecure: true,
	})

	flags := fetchFlags{server: "flag.example.com", timeout: time.Second}
	cfg, prof, err := resolveConnection(flags, store)
	if err != nil {
		t.Fatalf("resolveConnection: %v", err)
	}

	if cfg.Server != "flag.example.com" {
		t.Errorf("Server = %q, want the flag value", cfg.Server)
	}
	if cfg.Username != "envuser" {
		t.Errorf("Username = %q, want the env value", cfg.Username)
	}
	if cfg.Password != "envpass" {
		t.Errorf("Password = %q, want the env value", cfg.Password)
	}
	if cfg.Network != "CustomNet" {
		t.Errorf("Network = %q, want the profile value", cfg.Network)
	}
	if cfg.Proxy != "proxy.example.com:8080" {
		t.Errorf("Proxy = %q, want the profile value", cfg.Proxy)
	}
	if !cfg.Insecure {
		t.Error("Insecure should be inherited from the profile")
	}
	if cfg.Timeout != time.Second {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, time.Second)
	}
	if prof.Network != "CustomNet" {
		t.Errorf("returned profile Network = %q, want CustomNet", prof.Network)
	}
}

func TestResolveConnectionNamedProfile(t *testing.T) {
	clearConnectionEnv(t)

	store := testProfileStore(t, "staging", profile.Profile{Server: "staging.example.com"})
	if err := store.Save("prod", profile.Profile{Server: "prod.example.com"}, true); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, _, err := resolveConnection(fetchFlags{profileName: "staging"}, store)
	if err != nil {
		t.Fatalf("resolveConnection: %v", err)
	}
	if cfg.Server != "staging.example.com" {
		t.Errorf("Server = %q, want the named profile's server", cfg.Server)
	}
}

func TestResolveConnectionUnknownProfile(t *testing.T) {
	clearConnectionEnv(t)

	store := testProfileStore(t, "lab", profile.Profile{Server: "nsp.example.com"})

	_, _, err := resolveConnection(fetchFlags{profileName: "missing"}, store)
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestResolveConnectionNoDefaultProfile(t *testing.T) {
	clearConnectionEnv(t)

	// An empty store has no default; flags must still work.
	store, err := profile.NewStore(filepath.Join(t.TempDir(), "profiles.toml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cfg, _, err := resolveConnection(fetchFlags{server: "nsp.example.com"}, store)
	if err != nil {
		t.Fatalf("resolveConnection: %v", err)
	}
	if cfg.Server != "nsp.example.com" {
		t.Errorf("Server = %q, want the flag value", cfg.Server)
	}
}

func TestResolveConnectionMissingServer(t *testing.T) {
	clearConnectionEnv(t)

	_, _, err := resolveConnection(fetchFlags{}, nil)
	if err == nil {
		t.Fatal("expected error when no server is configured")
	}
	if !strings.Contains(err.Error(), "--server") {
		t.Errorf("error %q should point at --server", err)
	}
}

func TestResolveConnectionNilStore(t *testing.T) {
	clearConnectionEnv(t)
	withEnv(t, map[string]string{envServer: "env.example.com"})

	cfg, _, err := resolveConnection(fetchFlags{}, nil)
	if err != nil {
		t.Fatalf("resolveConnection: %v", err)
	}
	if cfg.Server != "env.example.com" {
		t.Errorf("Server = %q, want the env value", cfg.Server)
	}
}
