package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newProfilesCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the vehicle profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newForm()
			if err != nil {
				return err
			}
			profiles := f.Profiles()
			w := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(profiles)
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(profiles); err != nil {
					return err
				}
				return enc.Close()
			case "table":
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tBATTERY (kWh)\tEFFICIENCY (Wh/km)")
				for _, p := range profiles {
					fmt.Fprintf(tw, "%s\t%g\t%g\n", p.Name, p.BatteryKWh, p.EfficiencyWhPerKm)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output %q, want table, json or yaml", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}
