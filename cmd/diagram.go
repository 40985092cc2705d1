package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/critload/internal/exceed"
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Emit the plot geometry of a critical load function as JSON",
	Long: `Prints the CLF boundary, region rays and partitions, and optional deposition
overlay points as JSON with GeoJSON geometries, for an external renderer.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("diagram"); err != nil {
			return err
		}

		clf, err := clfFlags(cmd)
		if err != nil {
			return err
		}
		ndeps, _ := cmd.Flags().GetFloat64Slice("ndep")
		sdeps, _ := cmd.Flags().GetFloat64Slice("sdep")

		d, err := exceed.NewDiagram(clf, ndeps, sdeps)
		if err != nil {
			return eris.Wrap(err, "diagram")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		if indent, _ := cmd.Flags().GetBool("indent"); indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(d)
	},
}

func init() {
	addCLFFlags(diagramCmd)
	diagramCmd.Flags().Float64Slice("ndep", nil, "N deposition of overlay points")
	diagramCmd.Flags().Float64Slice("sdep", nil, "S deposition of overlay points")
	diagramCmd.Flags().Bool("indent", false, "indent JSON output")
	rootCmd.AddCommand(diagramCmd)
}
