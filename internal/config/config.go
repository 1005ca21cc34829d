package config

import (
	"fmt"
	"os"
)

type Backend string

const (
	// BackendMock is the in-memory demo backend used when no hosted
	// credentials are configured.
	BackendMock Backend = "mock"
	// BackendSupabase is the hosted backend: Supabase auth + profiles,
	// MongoDB storage.
	BackendSupabase Backend = "supabase"
)

type Config struct {
	Port            string
	SupabaseURL     string
	SupabaseAnonKey string
	MongoDBURI      string
	MongoDBPassword string
	SessionSecret   string
	FrontendURL     string
	Environment     string
	LogLevel        string

	// Backend is decided once at startup from credential presence and
	// never changes during the process lifetime.
	Backend Backend

	// DemoAutoSignup gates the mock backend's find-or-create sign-in.
	DemoAutoSignup bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		SessionSecret:   getEnvWithDefault("SESSION_SECRET", "blend-dev-secret"),
		FrontendURL:     getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		DemoAutoSignup:  os.Getenv("DEMO_AUTO_SIGNUP") == "true",
	}

	hostedVars := 0
	for _, v := range []string{cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.MongoDBURI} {
		if v != "" {
			hostedVars++
		}
	}
	switch hostedVars {
	case 0:
		cfg.Backend = BackendMock
	case 3:
		cfg.Backend = BackendSupabase
	default:
		// Fail loudly on partial credentials instead of limping along
		// half-configured.
		return nil, fmt.Errorf("partial hosted-backend configuration: SUPABASE_URL, SUPABASE_ANON_KEY and MONGODB_URI must all be set, or none")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
