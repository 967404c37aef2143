package cmd

import (
	"fmt"

	"github.com/alpkeskin/gotoon"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/wintrack/internal/drives"
)

var (
	drivesJSON bool
	drivesToon bool
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "Show drive usage",
	Long:  "List mounted drives with their label, used and total space, and a usage bar.",
	Args:  cobra.NoArgs,
	RunE:  runDrives,
}

func init() {
	drivesCmd.Flags().BoolVar(&drivesJSON, "json", false, "Output as JSON")
	drivesCmd.Flags().BoolVar(&drivesToon, "toon", false, "Output in LLM-friendly toon format")
}

func runDrives(cmd *cobra.Command, _ []string) error {
	list, err := drives.NewLister(logger).List(cmd.Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []drives.Drive{}
	}

	out := cmd.OutOrStdout()
	switch {
	case drivesJSON:
		data, err := jsoniter.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case drivesToon:
		encoded, err := gotoon.Encode(list)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(out, encoded)
		return nil
	}
	return drives.Render(out, list, 40)
}
