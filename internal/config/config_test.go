package config

import "testing"

func clearHostedEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DEMO_AUTO_SIGNUP", "")
}

func TestBackendSelectionMock(t *testing.T) {
	clearHostedEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Backend != BackendMock {
		t.Errorf("backend = %s, want mock", cfg.Backend)
	}
	if cfg.DemoAutoSignup {
		t.Error("auto signup on without DEMO_AUTO_SIGNUP")
	}
}

func TestBackendSelectionSupabase(t *testing.T) {
	clearHostedEnv(t)
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("MONGODB_URI", "mongodb+srv://cluster.example.net")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Backend != BackendSupabase {
		t.Errorf("backend = %s, want supabase", cfg.Backend)
	}
}

// Partial hosted credentials are a configuration error, never a silent
// fallback to the mock.
func TestBackendSelectionPartialFails(t *testing.T) {
	clearHostedEnv(t)
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("partial hosted configuration accepted")
	}
}

func TestDemoAutoSignupFlag(t *testing.T) {
	clearHostedEnv(t)
	t.Setenv("DEMO_AUTO_SIGNUP", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.DemoAutoSignup {
		t.Error("DEMO_AUTO_SIGNUP=true not honored")
	}
}
