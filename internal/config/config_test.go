package config

import (
	"errors"
	"strings"
	"testing"
)

// mapBackend is an in-memory ConfigBackend.
type mapBackend struct {
	strs map[string]string
	ints map[string]int
}

func newMapBackend() *mapBackend {
	return &mapBackend{strs: map[string]string{}, ints: map[string]int{}}
}

func (m *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strs[key]
	return v, ok, nil
}

func (m *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mapBackend) SetString(key, val string) error { m.strs[key] = val; return nil }
func (m *mapBackend) SetInt(key string, val int) error  { m.ints[key] = val; return nil }
func (m *mapBackend) Delete(key string) error {
	delete(m.strs, key)
	delete(m.ints, key)
	return nil
}

// mockTokenStore is a test double for TokenStore.
type mockTokenStore struct {
	value  string
	getErr error
	setErr error
	sets   int
}

func (m *mockTokenStore) Get(service, account string) (string, error) {
	return m.value, m.getErr
}

func (m *mockTokenStore) Set(service, account, value string) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.value = value
	return nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
	t.Setenv(tokenEnv, "")
}

// TestDefaults verifies all default values are applied when the backend is empty.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newMapBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.View.DefaultMode != "grouped" {
		t.Errorf("View.DefaultMode = %q, want %q", cfg.View.DefaultMode, "grouped")
	}
	if cfg.MCP.Enabled {
		t.Error("MCP.Enabled = true, want false")
	}
	if !strings.Contains(cfg.Storage.DataDir, "callhighlights") {
		t.Errorf("Storage.DataDir = %q, want it under callhighlights", cfg.Storage.DataDir)
	}
}

// TestBackendValues verifies that every key is read from the backend.
func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := newMapBackend()
	b.ints["server.port"] = 5000
	b.strs["storage.data_dir"] = "/tmp/callhighlights-test"
	b.strs["log.level"] = "debug"
	b.strs["view.default_mode"] = "flat"
	b.strs["mcp.enabled"] = "true"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Storage.DataDir != "/tmp/callhighlights-test" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.View.DefaultMode != "flat" {
		t.Errorf("View.DefaultMode = %q", cfg.View.DefaultMode)
	}
	if !cfg.MCP.Enabled {
		t.Error("MCP.Enabled = false, want true")
	}
}

// TestEnvOverride verifies that environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)

	b := newMapBackend()
	b.ints["server.port"] = 5000
	b.strs["view.default_mode"] = "flat"

	t.Setenv("CALLHL_SERVER_PORT", "6000")
	t.Setenv("CALLHL_VIEW_DEFAULT_MODE", "grouped")
	t.Setenv("CALLHL_MCP_ENABLED", "1")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 6000 {
		t.Errorf("Server.Port = %d, want 6000", cfg.Server.Port)
	}
	if cfg.View.DefaultMode != "grouped" {
		t.Errorf("View.DefaultMode = %q, want grouped", cfg.View.DefaultMode)
	}
	if !cfg.MCP.Enabled {
		t.Error("MCP.Enabled = false, want true")
	}
}

// TestEnvOverride_InvalidIgnored verifies unparseable env values keep the previous value.
func TestEnvOverride_InvalidIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALLHL_SERVER_PORT", "not-a-port")
	t.Setenv("CALLHL_MCP_ENABLED", "maybe")

	cfg, err := loadWith(newMapBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want default 4100", cfg.Server.Port)
	}
	if cfg.MCP.Enabled {
		t.Error("MCP.Enabled = true, want default false")
	}
}

func TestSetKey(t *testing.T) {
	b := newMapBackend()

	if err := setKeyWith(b, "server.port", "4200"); err != nil {
		t.Fatalf("server.port: %v", err)
	}
	if b.ints["server.port"] != 4200 {
		t.Errorf("server.port stored = %d", b.ints["server.port"])
	}

	if err := setKeyWith(b, "mcp.enabled", "TRUE"); err != nil {
		t.Fatalf("mcp.enabled: %v", err)
	}
	if b.strs["mcp.enabled"] != "true" {
		t.Errorf("mcp.enabled stored = %q", b.strs["mcp.enabled"])
	}

	if err := setKeyWith(b, "view.default_mode", "flat"); err != nil {
		t.Fatalf("view.default_mode: %v", err)
	}
}

func TestSetKey_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"server.port", "abc"},
		{"mcp.enabled", "sometimes"},
		{"view.default_mode", "sideways"},
		{"log.level", "loud"},
		{"no.such.key", "x"},
	}
	for _, tt := range tests {
		b := newMapBackend()
		if err := setKeyWith(b, tt.key, tt.value); err == nil {
			t.Errorf("setKeyWith(%q, %q) = nil, want error", tt.key, tt.value)
		}
		if len(b.strs)+len(b.ints) != 0 {
			t.Errorf("setKeyWith(%q, %q) wrote to backend", tt.key, tt.value)
		}
	}
}

func TestShowAll(t *testing.T) {
	cfg := defaults()
	cfg.Server.Port = 4321

	keys := ShowAll(cfg)
	if len(keys) != len(ValidKeys()) {
		t.Fatalf("ShowAll returned %d keys, ValidKeys %d", len(keys), len(ValidKeys()))
	}
	for _, k := range keys {
		if k.Key == "server.port" {
			if k.Value != "4321" || k.EnvVar != "CALLHL_SERVER_PORT" {
				t.Errorf("server.port = %+v", k)
			}
			return
		}
	}
	t.Error("server.port missing from ShowAll")
}

func TestGetAPIToken_EnvWins(t *testing.T) {
	t.Setenv(tokenEnv, "env-token")
	ts := &mockTokenStore{value: "stored-token"}

	tok, err := GetAPIToken(ts)
	if err != nil || tok != "env-token" {
		t.Errorf("GetAPIToken = (%q, %v), want env-token", tok, err)
	}
}

func TestGetAPIToken_Stored(t *testing.T) {
	t.Setenv(tokenEnv, "")
	ts := &mockTokenStore{value: "stored-token"}

	tok, err := GetAPIToken(ts)
	if err != nil || tok != "stored-token" {
		t.Errorf("GetAPIToken = (%q, %v), want stored-token", tok, err)
	}
	if ts.sets != 0 {
		t.Error("existing token was overwritten")
	}
}

// TestGetAPIToken_GeneratesOnce verifies a missing token is created and then reused.
func TestGetAPIToken_GeneratesOnce(t *testing.T) {
	t.Setenv(tokenEnv, "")
	ts := &mockTokenStore{getErr: errors.New("not found")}

	first, err := GetAPIToken(ts)
	if err != nil {
		t.Fatalf("GetAPIToken: %v", err)
	}
	if first == "" || ts.sets != 1 {
		t.Fatalf("token = %q, sets = %d", first, ts.sets)
	}

	ts.getErr = nil
	second, err := GetAPIToken(ts)
	if err != nil || second != first {
		t.Errorf("second GetAPIToken = (%q, %v), want %q", second, err, first)
	}
}

func TestGetAPIToken_StoreFailure(t *testing.T) {
	t.Setenv(tokenEnv, "")
	ts := &mockTokenStore{getErr: errors.New("not found"), setErr: errors.New("locked")}

	if _, err := GetAPIToken(ts); err == nil {
		t.Fatal("expected error when the token cannot be stored")
	}
}

// TestUnsetKey verifies a removed key falls back to its default on the next load.
func TestUnsetKey(t *testing.T) {
	clearEnv(t)
	b := newMapBackend()

	if err := setKeyWith(b, "server.port", "4200"); err != nil {
		t.Fatalf("setKeyWith: %v", err)
	}
	if err := unsetKeyWith(b, "server.port"); err != nil {
		t.Fatalf("unsetKeyWith: %v", err)
	}

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Server.Port = %d, want default 4100", cfg.Server.Port)
	}

	if err := unsetKeyWith(b, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}
