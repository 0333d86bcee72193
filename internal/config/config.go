// Package config loads settings from a .env file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/imobcontrol/internal/auth"
	"github.com/dvloznov/imobcontrol/internal/persistence"
)

// Config holds all application settings.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	StorageBackend     string
	DataDir            string
	SQLitePath         string
	PostgresDSN        string
	FirestoreProjectID string
	StorageKey         string
	NamespacePerUser   bool
	SeedSampleData     bool

	GeminiAPIKey string
	GeminiModel  string

	GCSBucket       string
	AutoBackup      bool
	AutoBackupDelay time.Duration

	BigQueryProjectID string
	BigQueryDataset   string

	NotionToken      string
	NotionDatabaseID string

	ChromeBin  string
	UsersFile  string
	JobWorkers int

	// Users is the login allow-list.
	Users []auth.User
}

// Load reads .env (when present) and the environment. Only a broken users
// file is an error.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may carry everything
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		StorageBackend:     getEnv("STORAGE_BACKEND", persistence.BackendFile),
		DataDir:            getEnv("DATA_DIR", "./data"),
		SQLitePath:         getEnv("SQLITE_PATH", ""),
		PostgresDSN:        getEnv("POSTGRES_DSN", ""),
		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		StorageKey:         getEnv("STORAGE_KEY", persistence.DefaultKey),
		NamespacePerUser:   getEnvBool("NAMESPACE_PER_USER", false),
		SeedSampleData:     getEnvBool("SEED_SAMPLE_DATA", true),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		GCSBucket:       getEnv("GCS_BUCKET", ""),
		AutoBackup:      getEnvBool("AUTO_BACKUP", true),
		AutoBackupDelay: getEnvDuration("AUTO_BACKUP_DELAY", 5*time.Second),

		BigQueryProjectID: getEnv("BIGQUERY_PROJECT_ID", ""),
		BigQueryDataset:   getEnv("BIGQUERY_DATASET", "imobcontrol"),

		NotionToken:      getEnv("NOTION_TOKEN", ""),
		NotionDatabaseID: getEnv("NOTION_DATABASE_ID", ""),

		ChromeBin:  getEnv("CHROME_BIN", ""),
		UsersFile:  getEnv("USERS_FILE", ""),
		JobWorkers: getEnvInt("JOB_WORKERS", 5),

		Users: auth.DefaultUsers(),
	}

	if cfg.UsersFile != "" {
		users, err := LoadUsers(cfg.UsersFile)
		if err != nil {
			return nil, err
		}
		cfg.Users = users
	}
	return cfg, nil
}

// PersistenceOptions maps the storage settings onto persistence.Options.
func (c *Config) PersistenceOptions() persistence.Options {
	return persistence.Options{
		Backend:            c.StorageBackend,
		DataDir:            c.DataDir,
		SQLitePath:         c.SQLitePath,
		PostgresDSN:        c.PostgresDSN,
		FirestoreProjectID: c.FirestoreProjectID,
	}
}

type usersFile struct {
	Users []auth.User `yaml:"users"`
}

// LoadUsers reads an allow-list from YAML:
//
//	users:
//	  - username: ana
//	    password: secret
//	    name: Ana
func LoadUsers(path string) ([]auth.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", path, err)
	}
	if len(f.Users) == 0 {
		return nil, fmt.Errorf("users file %s lists no users", path)
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Username) == "" || u.Password == "" {
			return nil, fmt.Errorf("users file %s: entry %d needs username and password", path, i)
		}
	}
	return f.Users, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
