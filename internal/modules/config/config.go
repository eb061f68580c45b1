package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Feed struct {
		WSURL   string `yaml:"ws_url"`
		RestURL string `yaml:"rest_url"`
	} `yaml:"feed"`

	Chart struct {
		Symbol    string `yaml:"symbol"`
		Interval  string `yaml:"interval"`
		BufferCap int    `yaml:"buffer_cap"`
	} `yaml:"chart"`

	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	// Реконнект стрима
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int
	HeartbeatEvery       time.Duration

	// Дебаунс жестов / защита от петли обратной связи
	GestureSettle   time.Duration
	GestureCooldown time.Duration
	WriteGuard      time.Duration

	// Прилив
	TrailingMargin time.Duration

	// Реконсиляция: сколько последних баров сканируем при рассинхроне часов
	SkewScan int

	// Автоснятие лока камеры, 0 = выключено
	LockTTL time.Duration

	BackfillLimit int
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		ReconnectBaseDelay:   durationFromEnv("RECONNECT_BASE_DELAY", "1s"),
		ReconnectMaxDelay:    durationFromEnv("RECONNECT_MAX_DELAY", "30s"),
		MaxReconnectAttempts: intFromEnv("MAX_RECONNECT_ATTEMPTS", 5),
		HeartbeatEvery:       durationFromEnv("HEARTBEAT_EVERY", "20s"),

		GestureSettle:   durationFromEnv("GESTURE_SETTLE", "50ms"),
		GestureCooldown: durationFromEnv("GESTURE_COOLDOWN", "150ms"),
		WriteGuard:      durationFromEnv("WRITE_GUARD", "50ms"),

		TrailingMargin: durationFromEnv("TRAILING_MARGIN", "0s"),
		SkewScan:       intFromEnv("SKEW_SCAN", 5),
		LockTTL:        durationFromEnv("LOCK_TTL", "0s"),
		BackfillLimit:  intFromEnv("BACKFILL_LIMIT", 500),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if config.Chart.BufferCap <= 0 {
		config.Chart.BufferCap = 1000
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
