package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/jobs"
	"reelforge/internal/preflight"
	"reelforge/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, directories and the speech backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			results = append(results, checkJobsDatabase(cfg.JobsDatabasePath(), ctx))
			failed := preflight.Failed(results)

			if jsonOut {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("reelforge doctor", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range results {
					fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
				}
				summary := renderStatusLine("Summary", statusOK, "all required checks passed", colorize)
				if len(failed) > 0 {
					summary = renderStatusLine("Summary", statusError, fmt.Sprintf("%d check(s) failed", len(failed)), colorize)
				}
				fmt.Fprintln(out, summary)
			}
			if len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, r := range failed {
					names = append(names, r.Name)
				}
				return services.Wrap(services.ErrConfiguration, "doctor", "checks", strings.Join(names, ", ")+" failed", nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	return cmd
}

func checkJobsDatabase(path string, ctx *commandContext) preflight.Result {
	const name = "Job history"
	var result preflight.Result
	err := ctx.withStore(func(store *jobs.Store) error {
		result = preflight.Result{Name: name, Passed: true, Detail: store.Path()}
		return nil
	})
	if err != nil {
		return preflight.Result{Name: name, Detail: fmt.Sprintf("%s (%v)", path, err)}
	}
	return result
}
