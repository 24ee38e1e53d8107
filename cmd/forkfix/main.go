package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/forkfix/internal"
	"github.com/rios0rios0/forkfix/internal/infrastructure/controllers"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "forkfix",
		Short: "Fork-and-pull-request remediation bot for npm projects",
		Long: `Finds public npm projects on GitHub whose metadata is worth fixing, forks
them with a primary account and opens one pull request per remediation from a
bot account. A ledger keeps track of every fork and proposal so that forks
whose proposals were all rejected get cleaned up.

Typical pipeline:
  forkfix discover -o approved.json
  forkfix fork approved.json
  forkfix propose --source ledger
  forkfix reconcile                 (cronjob)
  forkfix serve                     (webhook intake, replaces propose)

Credentials come from GITHUB_TOKEN and BOT_TOKEN, options from the file
named by FORKFIX_CONFIG or .forkfix.yaml.`,
		PersistentPreRun: func(command *cobra.Command, _ []string) {
			if verbose, _ := command.Flags().GetBool("verbose"); verbose {
				logger.SetLevel(logger.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().Bool("dry-run", false,
		"Show what would be done without making changes")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		if withFlags, ok := ctrl.(controllers.FlagsController); ok {
			withFlags.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()
	addSubcommands(cobraRoot, injectAppContext())

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'forkfix': %s", err)
	}
}
