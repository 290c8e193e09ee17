package cmd

import (
	"fmt"
	"os"

	"github.com/pet2cattle/aws-dashboard/pkg/awsutil"
	"github.com/pet2cattle/aws-dashboard/pkg/data"
	"github.com/pet2cattle/aws-dashboard/pkg/printutils"
	"github.com/pet2cattle/aws-dashboard/pkg/sts"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show which AWS identity the dashboard would run as",
	Long: `Show which AWS identity the dashboard would run as.

Resolves credentials the same way the server does, runs the credential probe and,
when it succeeds, prints the caller identity reported by STS.`,
	Example: `  # Check the credentials picked up from the environment
  aws-dashboard whoami

  # Check a specific profile
  aws-dashboard whoami --profile readonly`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(settings)

		ctx := cmd.Context()
		identity := settings.Identity()
		cfg, err := awsutil.LoadConfig(ctx, identity)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}

		prober := sts.NewProber(cfg, logger)
		usable := prober.Probe(ctx)

		var caller *data.CallerIdentity
		if usable {
			caller, err = prober.CallerIdentity(ctx)
			if err != nil {
				logger.Warn("caller identity unavailable", "error", err)
			}
		}

		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		return printutils.PrintWhoAmI(os.Stdout, noHeaders, cfg.Region, string(identity.Source()), usable, caller)
	},
}

func init() {
	whoamiCmd.Flags().Bool("no-headers", false, "Don't print headers")
	rootCmd.AddCommand(whoamiCmd)
}
