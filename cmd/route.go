package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/app"
	"github.com/kilianp07/evrange/config"
	"github.com/kilianp07/evrange/core/model"
)

func newRouteCmd(opts *rootOptions) *cobra.Command {
	var (
		profile  string
		estimate bool
	)
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "route <start> <end>",
		Short: "Fetch the driving distance between two places",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			svc, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := applyFlags(cmd, svc.Form, profile, values); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bus := svc.Orchestrator.Bus()
			sub := bus.Subscribe()
			printed := make(chan struct{})
			go func() {
				defer close(printed)
				for st := range sub {
					fmt.Fprintf(out, "[%s] %s\n", st.State, st.Message)
				}
			}()
			_, ferr := svc.Orchestrator.Fetch(cmd.Context(), args[0], args[1], svc.Form)
			bus.Unsubscribe(sub)
			<-printed
			if ferr != nil {
				return ferr
			}

			if !estimate {
				return nil
			}
			res, err := svc.Form.Calculate()
			if err != nil {
				return errors.New(res.Summary)
			}
			_, err = fmt.Fprintln(out, res.Summary)
			return err
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", model.CustomProfileName, "vehicle profile name")
	cmd.Flags().BoolVar(&estimate, "estimate", false, "estimate the range for the fetched distance")
	for _, ff := range fieldFlags {
		if ff.name == "distance" {
			continue
		}
		values[ff.name] = cmd.Flags().String(ff.name, "", ff.usage)
	}
	return cmd
}
