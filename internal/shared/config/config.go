package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config centraliza variáveis de ambiente do storefront.
// A URL base da API era hardcoded na primeira versão do cliente;
// aqui vira configuração externa.
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string

	APIBaseURL string // API externa do WiseBet
	RedisAddr  string // vazio desliga o cache de mercados

	HTTPTimeout time.Duration

	// Diretório de estado local (token e tema, best-effort)
	StateDir string

	MetricsPort string // porta exclusiva para /metrics e /healthz
}

// Load carrega variáveis de ambiente e define defaults.
func Load() Config {
	cfg := Config{
		Env:         getEnv("ENV", "local"),
		ServiceName: getEnv("SERVICE_NAME", "storefront"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		RedisAddr:  getEnv("REDIS_ADDR", ""),

		HTTPTimeout: getDuration("HTTP_TIMEOUT", 10*time.Second),

		StateDir: getEnv("STATE_DIR", defaultStateDir()),

		MetricsPort: getEnv("METRICS_PORT", "9095"),
	}

	return cfg
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wisebet"
	}
	return filepath.Join(home, ".wisebet")
}

// getEnv retorna o valor da variável de ambiente ou o default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
