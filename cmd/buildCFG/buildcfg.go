package buildCFG

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"campushub/internal/mailer"
	"campushub/internal/service"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("database.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("database.master_dsn is required")
	}

	var slaveDSNs []string
	if raw := cfg.GetString("database.slave_dsns"); raw != "" {
		for _, dsn := range strings.Split(raw, ",") {
			if dsn = strings.TrimSpace(dsn); dsn != "" {
				slaveDSNs = append(slaveDSNs, dsn)
			}
		}
	}

	opts := &dbpg.Options{
		MaxOpenConns:    intOr(cfg, "database.max_open_conns", 25),
		MaxIdleConns:    intOr(cfg, "database.max_idle_conns", 5),
		ConnMaxLifetime: time.Duration(intOr(cfg, "database.conn_max_lifetime_seconds", 300)) * time.Second,
	}

	log.Info().Int("slaves", len(slaveDSNs)).Msg("database configuration loaded")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		return RabbitConfig{}, fmt.Errorf("rabbit.url is required")
	}
	rc := RabbitConfig{
		Url:      url,
		Exchange: stringOr(cfg, "rabbit.exchange", "notifications"),
		Queue:    stringOr(cfg, "rabbit.queue", "registration-notifications"),
	}
	log.Info().Str("exchange", rc.Exchange).Str("queue", rc.Queue).Msg("rabbit configuration loaded")
	return rc, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) (mailer.Config, error) {
	host := cfg.GetString("smtp.host")
	if host == "" {
		return mailer.Config{}, fmt.Errorf("smtp.host is required")
	}
	return mailer.Config{
		Host:     host,
		Port:     stringOr(cfg, "smtp.port", "587"),
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
	}, nil
}

func BuildAuthConfig(cfg *config.Config, log *zerolog.Logger) (AuthConfig, error) {
	secret := cfg.GetString("auth.jwt_secret")
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("auth.jwt_secret is required")
	}
	ttl := time.Duration(intOr(cfg, "auth.token_ttl_minutes", 60)) * time.Minute
	return AuthConfig{Secret: secret, TokenTTL: ttl}, nil
}

func BuildServiceConfig(cfg *config.Config) service.Config {
	return service.Config{
		MaxLoginAttempts: intOr(cfg, "auth.max_login_attempts", 5),
		LoginWindow:      time.Duration(intOr(cfg, "auth.login_window_minutes", 15)) * time.Minute,
	}
}

func BuildWorkerConfig(cfg *config.Config) WorkerConfig {
	return WorkerConfig{
		PollInterval: time.Duration(intOr(cfg, "outbox.poll_interval_seconds", 5)) * time.Second,
		BatchSize:    intOr(cfg, "outbox.batch_size", 50),
	}
}

func intOr(cfg *config.Config, key string, def int) int {
	if v := cfg.GetInt(key); v != 0 {
		return v
	}
	return def
}

func stringOr(cfg *config.Config, key, def string) string {
	if v := cfg.GetString(key); v != "" {
		return v
	}
	return def
}
