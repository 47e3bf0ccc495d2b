package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Emmyme/hids-cli/pkg/auth"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
)

// Config holds all configuration for the hids binaries.
type Config struct {
	ModelPath   string
	DatasetPath string

	TestSize float64
	Seed     uint64
	Trees    int
	MaxDepth int
	Workers  int

	GRPCPort           string
	HTTPPort           string
	DatabaseURL        string
	DatabaseMaxConns   int32
	KafkaBroker        string
	KafkaRecordsTopic  string
	KafkaAlertsTopic   string
	KafkaConsumerGroup string
	KafkaTLS           bool
	KafkaSASLMechanism string
	KafkaSASLUsername  string
	KafkaSASLPassword  string
	JWTSecret          string
	JWTPrivateKeyFile  string
	JWTPublicKeyFile   string
	GRPCTLSCertFile    string
	GRPCTLSKeyFile     string
	GRPCTLSClientCA    string
	GRPCReflection     bool
	Environment        string
	LogLevel           string
	LogFormat          string
	OTelEndpoint       string
}

// fileConfig is the optional YAML overlay referenced by HIDS_CONFIG.
type fileConfig struct {
	ModelPath   string `yaml:"model_path"`
	DatasetPath string `yaml:"dataset_path"`
	Model       struct {
		TestSize *float64 `yaml:"test_size"`
		Seed     *uint64  `yaml:"seed"`
		Trees    *int     `yaml:"trees"`
		MaxDepth *int     `yaml:"max_depth"`
		Workers  *int     `yaml:"workers"`
	} `yaml:"model"`
	Server struct {
		GRPCPort string `yaml:"grpc_port"`
		HTTPPort string `yaml:"http_port"`
	} `yaml:"server"`
	Kafka struct {
		Broker        string `yaml:"broker"`
		RecordsTopic  string `yaml:"records_topic"`
		AlertsTopic   string `yaml:"alerts_topic"`
		ConsumerGroup string `yaml:"consumer_group"`
	} `yaml:"kafka"`
}

func defaults() *Config {
	return &Config{
		ModelPath:          "models/pretrained_model.json",
		DatasetPath:        "data/cybersecurity_intrusion_data.csv",
		TestSize:           0.2,
		Seed:               42,
		Trees:              100,
		MaxDepth:           0,
		Workers:            4,
		DatabaseMaxConns:   10,
		GRPCPort:           "8090",
		HTTPPort:           "9090",
		KafkaRecordsTopic:  "hids.records",
		KafkaAlertsTopic:   "hids.alerts",
		KafkaConsumerGroup: "hids",
		Environment:        "development",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads configuration. Precedence, lowest first: built-in defaults, the
// YAML file named by HIDS_CONFIG, a .env file in the working directory, and
// the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("HIDS_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ModelPath = getEnv("HIDS_MODEL_PATH", cfg.ModelPath)
	cfg.DatasetPath = getEnv("HIDS_DATASET_PATH", cfg.DatasetPath)
	cfg.GRPCPort = getEnv("GRPC_PORT", cfg.GRPCPort)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.KafkaBroker = getEnv("KAFKA_BROKER", cfg.KafkaBroker)
	cfg.KafkaRecordsTopic = getEnv("KAFKA_RECORDS_TOPIC", cfg.KafkaRecordsTopic)
	cfg.KafkaAlertsTopic = getEnv("KAFKA_ALERTS_TOPIC", cfg.KafkaAlertsTopic)
	cfg.KafkaConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.KafkaTLS = getEnv("KAFKA_TLS", "false") == "true"
	cfg.KafkaSASLMechanism = getEnv("KAFKA_SASL_MECHANISM", cfg.KafkaSASLMechanism)
	cfg.KafkaSASLUsername = getEnv("KAFKA_SASL_USERNAME", cfg.KafkaSASLUsername)
	cfg.KafkaSASLPassword = getEnv("KAFKA_SASL_PASSWORD", cfg.KafkaSASLPassword)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTPrivateKeyFile = getEnv("JWT_PRIVATE_KEY_FILE", cfg.JWTPrivateKeyFile)
	cfg.JWTPublicKeyFile = getEnv("JWT_PUBLIC_KEY_FILE", cfg.JWTPublicKeyFile)
	cfg.GRPCTLSCertFile = getEnv("GRPC_TLS_CERT_FILE", cfg.GRPCTLSCertFile)
	cfg.GRPCTLSKeyFile = getEnv("GRPC_TLS_KEY_FILE", cfg.GRPCTLSKeyFile)
	cfg.GRPCTLSClientCA = getEnv("GRPC_TLS_CLIENT_CA_FILE", cfg.GRPCTLSClientCA)
	cfg.GRPCReflection = getEnv("GRPC_REFLECTION", "false") == "true"
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.OTelEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTelEndpoint)

	var err error
	if cfg.TestSize, err = getEnvFloat("HIDS_TEST_SIZE", cfg.TestSize); err != nil {
		return nil, err
	}
	if cfg.Seed, err = getEnvUint("HIDS_SEED", cfg.Seed); err != nil {
		return nil, err
	}
	if cfg.Trees, err = getEnvInt("HIDS_TREES", cfg.Trees); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = getEnvInt("HIDS_MAX_DEPTH", cfg.MaxDepth); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvInt("HIDS_WORKERS", cfg.Workers); err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DATABASE_MAX_CONNS", int(cfg.DatabaseMaxConns))
	if err != nil {
		return nil, err
	}
	cfg.DatabaseMaxConns = int32(maxConns)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.ModelPath, fc.ModelPath)
	setString(&c.DatasetPath, fc.DatasetPath)
	setString(&c.GRPCPort, fc.Server.GRPCPort)
	setString(&c.HTTPPort, fc.Server.HTTPPort)
	setString(&c.KafkaBroker, fc.Kafka.Broker)
	setString(&c.KafkaRecordsTopic, fc.Kafka.RecordsTopic)
	setString(&c.KafkaAlertsTopic, fc.Kafka.AlertsTopic)
	setString(&c.KafkaConsumerGroup, fc.Kafka.ConsumerGroup)
	if fc.Model.TestSize != nil {
		c.TestSize = *fc.Model.TestSize
	}
	if fc.Model.Seed != nil {
		c.Seed = *fc.Model.Seed
	}
	if fc.Model.Trees != nil {
		c.Trees = *fc.Model.Trees
	}
	if fc.Model.MaxDepth != nil {
		c.MaxDepth = *fc.Model.MaxDepth
	}
	if fc.Model.Workers != nil {
		c.Workers = *fc.Model.Workers
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("test size must be within (0,1), got %g", c.TestSize)
	}
	if c.Trees <= 0 {
		return fmt.Errorf("trees must be positive, got %d", c.Trees)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.DatabaseMaxConns < 0 {
		return fmt.Errorf("database max conns must not be negative, got %d", c.DatabaseMaxConns)
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		return fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	if c.GRPCTLSClientCA != "" && c.GRPCTLSCertFile == "" {
		return fmt.Errorf("GRPC_TLS_CLIENT_CA_FILE requires GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE")
	}
	return nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// AuthEnabled reports whether any token key material is configured.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != "" || c.JWTPrivateKeyFile != "" || c.JWTPublicKeyFile != ""
}

// JWTConfig builds token settings from the configured key material. RSA key
// files take precedence over JWT_SECRET.
func (c *Config) JWTConfig(expiration time.Duration) (auth.JWTConfig, error) {
	jc := auth.JWTConfig{
		Secret:     c.JWTSecret,
		Issuer:     auth.DefaultIssuer,
		Expiration: expiration,
	}
	if c.JWTPrivateKeyFile != "" {
		key, err := auth.LoadKeyFromFile(c.JWTPrivateKeyFile)
		if err != nil {
			return auth.JWTConfig{}, err
		}
		jc.PrivateKeyPEM = string(key)
	}
	if c.JWTPublicKeyFile != "" {
		key, err := auth.LoadKeyFromFile(c.JWTPublicKeyFile)
		if err != nil {
			return auth.JWTConfig{}, err
		}
		jc.PublicKeyPEM = string(key)
	}
	return jc, nil
}

// KafkaBrokers splits KAFKA_BROKER on commas. Empty means streaming is off.
func (c *Config) KafkaBrokers() []string {
	if c.KafkaBroker == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(c.KafkaBroker, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Kafka returns the broker connection settings shared by producers and
// consumers.
func (c *Config) Kafka() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       c.KafkaBrokers(),
		ConsumerGroup: c.KafkaConsumerGroup,
		TLS:           c.KafkaTLS,
		SASLMechanism: c.KafkaSASLMechanism,
		SASLUsername:  c.KafkaSASLUsername,
		SASLPassword:  c.KafkaSASLPassword,
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
