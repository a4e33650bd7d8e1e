package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/presenter"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			output, err := version.Get().JSON()
			if err != nil {
				return err
			}
			fmt.Println(output)
			return nil
		}
		presenter.Info(version.Get().String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "output as JSON")
}
