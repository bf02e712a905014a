package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/core/form"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/validation"
	"github.com/kilianp07/evrange/infra/logger"
)

// fieldFlags maps estimate flags to form fields.
var fieldFlags = []struct {
	name  string
	field validation.Field
	usage string
}{
	{"battery", validation.FieldBatteryCapacity, "usable battery capacity in kWh"},
	{"efficiency", validation.FieldEfficiency, "consumption in Wh/km"},
	{"distance", validation.FieldDistance, "route distance in km, empty to skip the feasibility check"},
	{"elevation", validation.FieldElevationGain, "total elevation gain in m"},
	{"weather", validation.FieldWeather, "Sunny, Rainy or Snowy"},
	{"style", validation.FieldDrivingStyleFactor, "driving style factor, 1.0 neutral, above 1 sporty"},
}

func newForm() (*form.Form, error) {
	set, err := model.NewProfileSet(model.DefaultPresets())
	if err != nil {
		return nil, err
	}
	return form.New(set, nil, logger.New("cli")), nil
}

// applyFlags selects the profile, then applies the field flags that were set.
func applyFlags(cmd *cobra.Command, f *form.Form, profile string, values map[string]*string) error {
	if profile != "" {
		if _, err := f.SelectProfile(profile); err != nil {
			return err
		}
	}
	edits := map[validation.Field]string{}
	for _, ff := range fieldFlags {
		if cmd.Flags().Changed(ff.name) {
			edits[ff.field] = *values[ff.name]
		}
	}
	return f.Apply(edits)
}

func newEstimateCmd() *cobra.Command {
	var profile string
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the driving range for a vehicle profile and conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newForm()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, f, profile, values); err != nil {
				return err
			}
			res, err := f.Calculate()
			if err != nil {
				return errors.New(res.Summary)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
			return err
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", model.CustomProfileName, "vehicle profile name")
	for _, ff := range fieldFlags {
		values[ff.name] = cmd.Flags().String(ff.name, "", ff.usage)
	}
	return cmd
}
