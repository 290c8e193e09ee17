package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
)

const (
	DefaultPort    = 5001
	DefaultEnvFile = ".env"
)

// Settings is the process configuration, resolved once at startup
type Settings struct {
	Port        int
	Region      string
	Profile     string
	Namespace   string
	PodName     string
	PodSelector string
	ForceDemo   bool
	LogLevel    slog.Level

	// ExplicitKeys come from command line flags and win over EnvironmentKeys
	ExplicitKeys    awsutil.Keys
	EnvironmentKeys awsutil.Keys
}

// Identity returns the AWS identity these settings describe
func (s Settings) Identity() awsutil.Identity {
	return awsutil.Identity{
		Explicit:    s.ExplicitKeys,
		Environment: s.EnvironmentKeys,
		Profile:     s.Profile,
		Region:      s.Region,
	}
}

// Load reads settings from the environment after loading envFile, if it exists.
// Variables already set in the process environment are never overridden by the file.
func Load(envFile string) (Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	settings := Settings{
		Port:        DefaultPort,
		Region:      firstEnv("AWS_REGION", "AWS_DEFAULT_REGION"),
		Profile:     os.Getenv("AWS_PROFILE"),
		Namespace:   firstEnv("POD_NAMESPACE", "NAMESPACE"),
		PodName:     firstEnv("POD_NAME", "HOSTNAME"),
		PodSelector: os.Getenv("POD_SELECTOR"),
		EnvironmentKeys: awsutil.Keys{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		},
	}

	if settings.Region == "" {
		settings.Region = awsutil.DefaultRegion
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return Settings{}, fmt.Errorf("invalid PORT %q", port)
		}
		settings.Port = p
	}

	if demo := os.Getenv("DEMO_MODE"); demo != "" {
		forced, err := strconv.ParseBool(demo)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid DEMO_MODE %q: %w", demo, err)
		}
		settings.ForceDemo = forced
	}

	level, err := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Settings{}, err
	}
	settings.LogLevel = level

	return settings, nil
}

// ParseLogLevel accepts debug, info, warn and error; empty means info
func ParseLogLevel(value string) (slog.Level, error) {
	if value == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", value, err)
	}
	return level, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
