// Package config loads runtime configuration from environment variables.
// The vocabulary and policy table is not configuration; it lives in the
// vocab package and is embedded at build time.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	OpenAI OpenAIConfig
	Gemini GeminiConfig
	Ollama OllamaConfig
	Server ServerConfig
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2-vision:11b
}

type ServerConfig struct {
	Host string
	Port int
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		Server: ServerConfig{
			Host: os.Getenv("SERVER_HOST"),
			Port: envInt("SERVER_PORT", 8080),
		},
	}
}
