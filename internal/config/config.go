package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scheduler modes.
const (
	SchedulerInProcess = "inprocess"
	SchedulerTemporal  = "temporal"
)

type Config struct {
	DatabaseURL     string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string
	TemporalAddress string

	TemporalTLSCert   string
	TemporalTLSKey    string
	TemporalTLSCACert string

	// Scheduler selects who runs the periodic sweeps: the API process
	// itself or a Temporal schedule served by machines-worker.
	Scheduler     string
	SweepInterval time.Duration

	RedisURL string
	NATSURL  string

	AWSAccessKey string
	AWSSecretKey string
	AWSRegion    string
	ECSCluster   string
	VPCID        string

	OrchestratorTimeout     time.Duration
	OrchestratorMaxAttempts int
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ServiceName:       getEnv("SERVICE_NAME", ""),
		TemporalAddress:   getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalTLSCert:   getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:    getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert: getEnv("TEMPORAL_TLS_CA_CERT", ""),
		Scheduler:         strings.ToLower(getEnv("SCHEDULER", SchedulerInProcess)),
		RedisURL:          getEnv("REDIS_URL", ""),
		NATSURL:           getEnv("NATS_URL", ""),
		AWSAccessKey:      getEnv("MACHINECHALL_ACCESS_KEY", ""),
		AWSSecretKey:      getEnv("MACHINECHALL_SECRET_KEY", ""),
		AWSRegion:         getEnv("MACHINECHALL_REGION", ""),
		ECSCluster:        getEnv("MACHINECHALL_ECS_CLUSTER", ""),
		VPCID:             getEnv("MACHINECHALL_VPC_ID", ""),
	}

	var err error
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.OrchestratorTimeout, err = getDuration("ORCHESTRATOR_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.OrchestratorMaxAttempts, err = getInt("ORCHESTRATOR_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the settings the given binary needs are present.
func (c *Config) Validate(role string) error {
	var missing []string
	require := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	require("DATABASE_URL", c.DatabaseURL)
	switch role {
	case "machines-api":
		require("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		if c.Scheduler == SchedulerTemporal {
			require("TEMPORAL_ADDRESS", c.TemporalAddress)
		}
	case "machines-worker":
		require("TEMPORAL_ADDRESS", c.TemporalAddress)
	}
	require("MACHINECHALL_REGION", c.AWSRegion)
	require("MACHINECHALL_ECS_CLUSTER", c.ECSCluster)
	require("MACHINECHALL_VPC_ID", c.VPCID)
	if (c.AWSAccessKey == "") != (c.AWSSecretKey == "") {
		missing = append(missing, "MACHINECHALL_ACCESS_KEY and MACHINECHALL_SECRET_KEY must both be set")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if c.Scheduler != SchedulerInProcess && c.Scheduler != SchedulerTemporal {
		return fmt.Errorf("SCHEDULER must be %q or %q, got %q", SchedulerInProcess, SchedulerTemporal, c.Scheduler)
	}
	if (c.TemporalTLSCert == "") != (c.TemporalTLSKey == "") {
		return fmt.Errorf("TEMPORAL_TLS_CERT and TEMPORAL_TLS_KEY must both be set")
	}
	if c.OrchestratorMaxAttempts < 1 {
		return fmt.Errorf("ORCHESTRATOR_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
