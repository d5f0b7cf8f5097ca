package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	LogLevel            string
	LogPretty           bool
	RecomputeExpected   bool          // HATCH_RECOMPUTE_EXPECTED: exp_hatch_qty follows EGGS SET edits
	RecomputeCulled     bool          // HATCH_RECOMPUTE_CULLED: outcome_culled follows hatched/sold edits
	GridIdleTTL         time.Duration // GRID_IDLE_TTL, e.g. 30m
	GridSweepSchedule   string        // GRID_SWEEP_SCHEDULE, cron spec
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("GRID_IDLE_TTL", "30m")
	viper.SetDefault("GRID_SWEEP_SCHEDULE", "*/5 * * * *")

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	ttl, err := time.ParseDuration(viper.GetString("GRID_IDLE_TTL"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("GRID_IDLE_TTL: invalid duration %q", viper.GetString("GRID_IDLE_TTL"))
	}
	recomputeExpected, err := envBool("HATCH_RECOMPUTE_EXPECTED")
	if err != nil {
		return nil, err
	}
	recomputeCulled, err := envBool("HATCH_RECOMPUTE_CULLED")
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		LogPretty:           viper.GetBool("LOG_PRETTY"),
		RecomputeExpected:   recomputeExpected,
		RecomputeCulled:     recomputeCulled,
		GridIdleTTL:         ttl,
		GridSweepSchedule:   viper.GetString("GRID_SWEEP_SCHEDULE"),
	}, nil
}

// envBool reads an optional boolean key; unset is false.
func envBool(key string) (bool, error) {
	v := strings.TrimSpace(viper.GetString(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
