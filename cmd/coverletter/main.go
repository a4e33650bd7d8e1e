package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/config"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/presenter"
)

func init() {
	config.Init()
}

var rootCmd = &cobra.Command{
	Use:   "coverletter",
	Short: "Iterative cover letter co-authoring from a job posting analysis",
	Long: `coverletter generates and refines cover letters through a persistent
conversation anchored to a job posting analysis. Each instruction
refines the previous draft; manual edits to the letter are detected
and preserved across iterations.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			presenter.Warning(fmt.Sprintf("invalid log level %q, using info", viper.GetString("log_level")))
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			presenter.SetQuiet(true)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func bindGlobalFlags(flags *pflag.FlagSet) {
	flags.String("provider", "", "generation provider to use (anthropic, openai, google or mock)")
	flags.String("profile", "", "configuration profile to apply")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.Bool("quiet", false, "suppress non-essential output")

	viper.BindPFlag("generation.provider", flags.Lookup("provider"))
	viper.BindPFlag("profile", flags.Lookup("profile"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
}

func main() {
	bindGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(conversationCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
