package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultSessionSecret = "default-secret-key-change-me"
	defaultJWTSecret     = "default-jwt-secret-change-me"
)

type Config struct {
	DBDriver      string   `yaml:"db_driver"`
	DBHost        string   `yaml:"db_host"`
	DBPort        string   `yaml:"db_port"`
	DBUser        string   `yaml:"db_user"`
	DBPassword    string   `yaml:"db_password"`
	DBName        string   `yaml:"db_name"`
	DBPath        string   `yaml:"db_path"`
	RedisHost     string   `yaml:"redis_host"`
	RedisPort     string   `yaml:"redis_port"`
	SessionSecret string   `yaml:"session_secret"`
	JWTSecret     string   `yaml:"jwt_secret"`
	JWTTTLHours   int      `yaml:"jwt_ttl_hours"`
	GinMode       string   `yaml:"gin_mode"`
	Port          string   `yaml:"port"`
	UploadDir     string   `yaml:"upload_dir"`
	PublicBaseURL string   `yaml:"public_base_url"`
	CORSOrigins   []string `yaml:"cors_origins"`
	OpenAIAPIKey  string   `yaml:"openai_api_key"`
	AdminEmail    string   `yaml:"admin_email"`
	AdminPassword string   `yaml:"admin_password"`
	AdminName     string   `yaml:"admin_name"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables (a .env file is loaded first if present).
// Later sources win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			log.Printf("Ignoring config file %s: %v", path, err)
		}
	}
	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	return &Config{
		DBDriver:      "mysql",
		DBHost:        "localhost",
		DBPort:        "3306",
		DBUser:        "taskcolab",
		DBPassword:    "taskcolab",
		DBName:        "task_colab",
		DBPath:        "task_colab.db",
		RedisPort:     "6379",
		SessionSecret: defaultSessionSecret,
		JWTSecret:     defaultJWTSecret,
		JWTTTLHours:   24 * 7,
		GinMode:       "debug",
		Port:          "8080",
		UploadDir:     "uploads",
		PublicBaseURL: "",
		CORSOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AdminName:     "Administrator",
	}
}

// LoadFile overlays values from a YAML file onto the configuration.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnv("REDIS_PORT", c.RedisPort)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTTTLHours = getEnvInt("JWT_TTL_HOURS", c.JWTTTLHours)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.Port = getEnv("PORT", c.Port)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.PublicBaseURL = getEnv("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.AdminEmail = getEnv("ADMIN_EMAIL", c.AdminEmail)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.AdminName = getEnv("ADMIN_NAME", c.AdminName)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Validate refuses the built-in secrets in release mode and warns about them
// otherwise.
func (c *Config) Validate() error {
	var unset []string
	if c.SessionSecret == defaultSessionSecret {
		unset = append(unset, "SESSION_SECRET")
	}
	if c.JWTSecret == defaultJWTSecret {
		unset = append(unset, "JWT_SECRET")
	}
	if len(unset) == 0 {
		return nil
	}
	if c.IsProduction() {
		return fmt.Errorf("%s must be set in release mode", strings.Join(unset, " and "))
	}
	log.Printf("WARNING: %s not set, using the development default", strings.Join(unset, " and "))
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
