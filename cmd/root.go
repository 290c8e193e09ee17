package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pet2cattle/aws-dashboard/pkg/config"
	"github.com/pet2cattle/aws-dashboard/pkg/web"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/cli-runtime/pkg/genericclioptions"
)

const shutdownTimeout = 10 * time.Second

var KubernetesConfigFlags *genericclioptions.ConfigFlags

var rootCmd = &cobra.Command{
	Use:   "aws-dashboard",
	Short: "Read-only dashboard of AWS resources",
	Long: `Read-only dashboard of AWS resources.

Serves a page listing EC2 instances, VPCs, load balancers and self-owned AMIs
of one account and region. When no usable credentials are found the page shows
a fixed demo dataset instead.`,
	Example: `  # Serve on the default port using the default credential chain
  aws-dashboard

  # Serve sample data only
  aws-dashboard --demo --port 8080`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(settings)

		ctx := cmd.Context()
		aggregator, source, err := newAggregator(ctx, settings, logger)
		if err != nil {
			return err
		}

		server, err := web.NewServer(web.Config{
			Port:             settings.Port,
			Region:           settings.Region,
			CredentialSource: string(source),
			Logger:           logger,
		}, aggregator, newStatusCollector(settings))
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
		}

		return server.Shutdown(shutdownTimeout)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	addSettingsFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().IntP("port", "p", 0, "Port to listen on (defaults to PORT, then 5001)")

	KubernetesConfigFlags = genericclioptions.NewConfigFlags(true)
	KubernetesConfigFlags.AddFlags(rootCmd.PersistentFlags())
}

// addSettingsFlags registers the flags loadSettings applies over the environment
func addSettingsFlags(flags *pflag.FlagSet) {
	flags.String("env-file", config.DefaultEnvFile, "Dotenv file loaded before reading the environment")
	flags.String("region", "", "AWS region (defaults to AWS_REGION, then us-east-1)")
	flags.String("profile", "", "AWS shared config profile")
	flags.String("access-key-id", "", "AWS access key id, takes precedence over the environment")
	flags.String("secret-access-key", "", "AWS secret access key")
	flags.String("session-token", "", "AWS session token")
	flags.Bool("demo", false, "Always serve the demo dataset")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("pod-namespace", "", "Namespace the dashboard pods run in")
	flags.String("pod-name", "", "Name of this pod")
	flags.String("pod-selector", "", "Label selector matching the dashboard pods")
}
