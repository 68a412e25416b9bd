package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "scanctl",
		Short: "scanflow operator toolbox",
		Long: `scanctl decodes warehouse barcodes without a running server and
issues bearer tokens for scanning devices.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envFile != "" {
				_ = godotenv.Overload(envFile)
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before running")

	root.AddCommand(newDecodeCmd(), newTokenCmd())
	return root
}
