package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del juego.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Clock   ClockConfig   `yaml:"clock"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// GameConfig contiene las políticas del motor de predicciones.
type GameConfig struct {
	PayoutNum  int64 `yaml:"payout_num"`  // multiplicador como ratio entero: 18/10 = 1.8x
	PayoutDen  int64 `yaml:"payout_den"`
	MinDeposit int64 `yaml:"min_deposit"` // 0 desactiva el mínimo
	MinStake   int64 `yaml:"min_stake"`   // 0 desactiva el mínimo
}

// ClockConfig selecciona la estrategia de tiempo.
type ClockConfig struct {
	Strategy string `yaml:"strategy"` // counter | wall
}

// OracleConfig selecciona la fuente de precios y sus decoradores.
type OracleConfig struct {
	Strategy       string  `yaml:"strategy"`        // mock | live | consensus
	FeedBase       string  `yaml:"feed_base"`       // base URL del feed para live/consensus
	Tolerance      float64 `yaml:"tolerance"`       // divergencia máxima entre fuentes (consensus)
	Fallback       bool    `yaml:"fallback"`        // degradar a mock si la fuente primaria falla
	ReportFallback bool    `yaml:"report_fallback"` // marcar el source tag cuando se degrada
	CacheAddr      string  `yaml:"cache_addr"`      // Redis addr; vacío desactiva la caché
	CacheTTL       int     `yaml:"cache_ttl"`       // segundos de vida de cada quote cacheada
}

// StorageConfig controla dónde se persiste el estado.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para no persistir
}

// ServerConfig controla el API HTTP.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Si el archivo no existe, devuelve la configuración por defecto.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: solo defaults + env
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CacheTTLDuration devuelve el TTL de la caché de precios como time.Duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.Oracle.CacheTTL) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Oracle.CacheAddr = v
	}
	if v := os.Getenv("PREDMARKET_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Game.PayoutNum <= 0 || cfg.Game.PayoutDen <= 0 {
		cfg.Game.PayoutNum = 18
		cfg.Game.PayoutDen = 10
	}
	if cfg.Game.MinDeposit < 0 {
		cfg.Game.MinDeposit = 0
	}
	if cfg.Game.MinStake < 0 {
		cfg.Game.MinStake = 0
	}
	if cfg.Clock.Strategy == "" {
		cfg.Clock.Strategy = "counter"
	}
	if cfg.Oracle.Strategy == "" {
		cfg.Oracle.Strategy = "mock"
	}
	if cfg.Oracle.Tolerance <= 0 {
		cfg.Oracle.Tolerance = 0.01
	}
	if cfg.Oracle.CacheTTL <= 0 {
		cfg.Oracle.CacheTTL = 30
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
