package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/critload/internal/exceed"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Compute the exceedance of one deposition point",
	Long: `Classifies a single (N, S) deposition point against a critical load function
and prints "ex_n ex_s region_id". An invalid CLF prints "-1 -1 -1".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		clf, err := clfFlags(cmd)
		if err != nil {
			return err
		}
		depN, _ := cmd.Flags().GetFloat64("dep-n")
		depS, _ := cmd.Flags().GetFloat64("dep-s")

		res, err := exceed.Classify(clf, exceed.Deposition{N: depN, S: depS})
		if err != nil {
			return eris.Wrap(err, "classify")
		}

		exN, exS, region := res.Legacy()
		fmt.Fprintf(cmd.OutOrStdout(), "%g %g %d\n", exN, exS, region)
		return nil
	},
}

func init() {
	addCLFFlags(classifyCmd)
	classifyCmd.Flags().Float64("dep-n", 0, "total N deposition")
	classifyCmd.Flags().Float64("dep-s", 0, "non-marine S deposition")
	rootCmd.AddCommand(classifyCmd)
}

// addCLFFlags registers the four required CLF parameter flags.
func addCLFFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("cln-min", 0, "CLminN")
	cmd.Flags().Float64("cln-max", 0, "CLmaxN")
	cmd.Flags().Float64("cls-min", 0, "CLminS")
	cmd.Flags().Float64("cls-max", 0, "CLmaxS")
	for _, name := range []string{"cln-min", "cln-max", "cls-min", "cls-max"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func clfFlags(cmd *cobra.Command) (exceed.CLF, error) {
	var clf exceed.CLF
	for name, dst := range map[string]*float64{
		"cln-min": &clf.ClnMin,
		"cln-max": &clf.ClnMax,
		"cls-min": &clf.ClsMin,
		"cls-max": &clf.ClsMax,
	} {
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return clf, eris.Wrapf(err, "flag --%s", name)
		}
		*dst = v
	}
	return clf, nil
}
