package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	DBDSN             string
	ServerPort        string
	SessionSecret     string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	AWS        AWSConfig
	Jira       JiraConfig
	ServiceNow ServiceNowConfig
	Evidence   EvidenceConfig

	AuditPrepBaselineDays int
	AuditPrepCurrentDays  int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type JiraConfig struct {
	URL      string
	Username string
	APIToken string
}

// Configured reports whether every Jira credential is present.
func (j JiraConfig) Configured() bool {
	return j.URL != "" && j.Username != "" && j.APIToken != ""
}

type ServiceNowConfig struct {
	Instance string
	Username string
	Password string
}

func (s ServiceNowConfig) Configured() bool {
	return s.Instance != "" && s.Username != "" && s.Password != ""
}

type EvidenceConfig struct {
	Storage    string
	Dir        string
	S3Bucket   string
	S3Prefix   string
	S3Endpoint string
}

type LoadOptions struct {
	RequireDatabase bool
}

// Load reads .env (if any) and the process environment for the server.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabase: true})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	cfg := &Config{
		DBDSN:             os.Getenv("DB_DSN"),
		ServerPort:        getenvDefault("SERVER_PORT", "8080"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		DBMaxOpenConns:    getenvIntDefault("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    getenvIntDefault("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getenvDurationDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AWS: AWSConfig{
			Region:          getenvDefault("AWS_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		Jira: JiraConfig{
			URL:      strings.TrimRight(os.Getenv("JIRA_URL"), "/"),
			Username: os.Getenv("JIRA_USERNAME"),
			APIToken: os.Getenv("JIRA_API_TOKEN"),
		},
		ServiceNow: ServiceNowConfig{
			Instance: os.Getenv("SERVICENOW_INSTANCE"),
			Username: os.Getenv("SERVICENOW_USERNAME"),
			Password: os.Getenv("SERVICENOW_PASSWORD"),
		},
		Evidence: EvidenceConfig{
			Storage:    strings.ToLower(getenvDefault("EVIDENCE_STORAGE", StorageLocal)),
			Dir:        getenvDefault("EVIDENCE_DIR", "./evidence_storage"),
			S3Bucket:   os.Getenv("EVIDENCE_S3_BUCKET"),
			S3Prefix:   os.Getenv("EVIDENCE_S3_PREFIX"),
			S3Endpoint: os.Getenv("EVIDENCE_S3_ENDPOINT"),
		},
		AuditPrepBaselineDays: getenvIntDefault("AUDIT_PREP_BASELINE_DAYS", 90),
		AuditPrepCurrentDays:  getenvIntDefault("AUDIT_PREP_CURRENT_DAYS", 14),
	}

	if opts.RequireDatabase && cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	switch cfg.Evidence.Storage {
	case StorageLocal:
	case StorageS3:
		if cfg.Evidence.S3Bucket == "" {
			return nil, errors.New("EVIDENCE_S3_BUCKET is not set")
		}
	default:
		return nil, fmt.Errorf("EVIDENCE_STORAGE must be one of: %s, %s", StorageLocal, StorageS3)
	}

	return cfg, nil
}

// RequireSessionSecret is checked by the HTTP server only; CLI maintenance
// commands run without one.
func (c *Config) RequireSessionSecret() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
