package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
	"github.com/pet2cattle/aws-dashboard/pkg/config"
	"github.com/pet2cattle/aws-dashboard/pkg/dashboard"
	"github.com/pet2cattle/aws-dashboard/pkg/ec2"
	"github.com/pet2cattle/aws-dashboard/pkg/elb"
	"github.com/pet2cattle/aws-dashboard/pkg/k8s"
	"github.com/pet2cattle/aws-dashboard/pkg/sts"
	"github.com/spf13/cobra"
)

// loadSettings reads the environment (and the dotenv file), then applies any flag
// the user set explicitly on top of it
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	settings, err := config.Load(envFile)
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"region":            &settings.Region,
		"profile":           &settings.Profile,
		"access-key-id":     &settings.ExplicitKeys.AccessKeyID,
		"secret-access-key": &settings.ExplicitKeys.SecretAccessKey,
		"session-token":     &settings.ExplicitKeys.SessionToken,
		"pod-namespace":     &settings.Namespace,
		"pod-name":          &settings.PodName,
		"pod-selector":      &settings.PodSelector,
	}
	for name, target := range stringFlags {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}

	if flags.Changed("demo") {
		settings.ForceDemo, _ = flags.GetBool("demo")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		port, _ := flags.GetInt("port")
		if port <= 0 || port > 65535 {
			return config.Settings{}, fmt.Errorf("invalid port %d", port)
		}
		settings.Port = port
	}
	if flags.Changed("log-level") {
		value, _ := flags.GetString("log-level")
		level, err := config.ParseLogLevel(value)
		if err != nil {
			return config.Settings{}, err
		}
		settings.LogLevel = level
	}

	// kubectl style -n is honored when nothing more specific was given
	if settings.Namespace == "" && KubernetesConfigFlags.Namespace != nil {
		settings.Namespace = *KubernetesConfigFlags.Namespace
	}

	return settings, nil
}

func newLogger(settings config.Settings) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: settings.LogLevel}))
}

// newAggregator resolves the AWS identity once and builds every client from it. An
// identity that cannot even be loaded (e.g. a profile missing from the shared config)
// leaves the dashboard running on demo data.
func newAggregator(ctx context.Context, settings config.Settings, logger *slog.Logger) (*dashboard.Aggregator, awsutil.CredentialSource, error) {
	identity := settings.Identity()
	cfg, err := awsutil.LoadConfig(ctx, identity)
	if err != nil {
		logger.Warn("failed to load AWS config, serving demo data", "source", string(identity.Source()), "profile", settings.Profile, "error", err)
		// no client is ever reached when ForceDemo is set
		aggregator := dashboard.NewAggregator(nil, nil, nil, dashboard.Options{ForceDemo: true, Logger: logger})
		return aggregator, identity.Source(), nil
	}

	logger.Info("aws identity resolved", "source", string(identity.Source()), "region", cfg.Region)

	aggregator := dashboard.NewAggregator(
		sts.NewProber(cfg, logger),
		ec2.NewClient(cfg),
		elb.NewClient(cfg),
		dashboard.Options{ForceDemo: settings.ForceDemo, Logger: logger},
	)
	return aggregator, identity.Source(), nil
}

func newStatusCollector(settings config.Settings) *k8s.StatusCollector {
	return k8s.NewStatusCollector(KubernetesConfigFlags, settings.Namespace, settings.PodName, settings.PodSelector)
}
