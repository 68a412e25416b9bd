package main

import (
	"bufio"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"scanflow/internal/domain/barcode"
	"scanflow/internal/infrastructure/http/v1/dto"
)

func newDecodeCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "decode [barcode...]",
		Short: "Decode barcodes and print them as JSON",
		Long: `Decodes each argument, or each stdin line when no arguments are given.
Write the GS1 group separator as <GS> when the shell cannot pass ASCII 29.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}

			if len(args) > 0 {
				for _, raw := range args {
					if err := enc.Encode(dto.FromIdentity(barcode.Decode(raw))); err != nil {
						return err
					}
				}
				return nil
			}

			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				raw := strings.TrimRight(sc.Text(), "\r")
				if raw == "" {
					continue
				}
				if err := enc.Encode(dto.FromIdentity(barcode.Decode(raw))); err != nil {
					return err
				}
			}
			return sc.Err()
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}
