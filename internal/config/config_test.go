package config

import "testing"

func TestLoad(t *testing.T) {
	t.Setenv("OPENAI_TOKEN", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "llava")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")

	cfg := Load()

	if cfg.OpenAI.Token != "sk-test" {
		t.Errorf("OpenAI.Token = %q, want sk-test", cfg.OpenAI.Token)
	}
	if cfg.Gemini.APIKey != "gm-test" {
		t.Errorf("Gemini.APIKey = %q, want gm-test", cfg.Gemini.APIKey)
	}
	if cfg.Ollama.URL != "http://ollama:11434" || cfg.Ollama.Model != "llava" {
		t.Errorf("Ollama = %+v, want URL and model from env", cfg.Ollama)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("Server = %+v, want 0.0.0.0:9090", cfg.Server)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		value    string
		expected int
	}{
		{"", 42},
		{"7", 7},
		{"-1", 42},   // non-positive falls back
		{"zero", 42}, // unparsable falls back
	}

	for _, tt := range tests {
		t.Setenv("TEST_ENV_INT", tt.value)
		if got := envInt("TEST_ENV_INT", 42); got != tt.expected {
			t.Errorf("envInt(%q) = %d, want %d", tt.value, got, tt.expected)
		}
	}
}
