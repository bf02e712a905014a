package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/validation"
	"github.com/kilianp07/evrange/infra/chart"
)

func newChartCmd() *cobra.Command {
	var profile, out string
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Write an HTML chart of the range per weather and driving style",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newForm()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, f, profile, values); err != nil {
				return err
			}
			in := f.Inputs()
			params, err := validation.Parse(in)
			if err != nil {
				return err
			}
			page, err := chart.RangeHTML(in.Profile, params)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", model.CustomProfileName, "vehicle profile name")
	cmd.Flags().StringVarP(&out, "out", "o", "range.html", "output file")
	for _, ff := range fieldFlags {
		values[ff.name] = cmd.Flags().String(ff.name, "", ff.usage)
	}
	return cmd
}
