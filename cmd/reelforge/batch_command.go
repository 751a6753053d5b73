package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelforge/internal/pipeline"
	"reelforge/internal/script"
	"reelforge/internal/services"
)

type batchJSON struct {
	BatchID  string        `json:"batch_id"`
	Outputs  []outputJSON  `json:"outputs"`
	Failures []failureJSON `json:"failures"`
	Zip      string        `json:"zip,omitempty"`
}

type failureJSON struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	JobID string `json:"job_id,omitempty"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var opts pipeline.BatchOptions
	var jsonOut, skipChecks, noClean, noZip bool

	cmd := &cobra.Command{
		Use:   "batch <script>",
		Short: "Render every title/body pair in a script file",
		Long: `Render every title/body pair in a script file.

A line starting with ## switches between title and body mode:

  ##
  First title
  ##
  First body, any number of lines.
  ##
  Second title
  ##
  Second body.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := script.ParseFile(args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return services.Wrap(services.ErrValidation, "cli", "batch", fmt.Sprintf("%s contains no title/body pairs", args[0]), nil)
			}
			opts.Clean = !noClean
			opts.Zip = !noZip

			return ctx.withGenerator(cmd, skipChecks, func(gen *pipeline.Generator) error {
				result, runErr := gen.Batch(cmd.Context(), entries, opts)
				if jsonOut {
					if err := writeJSON(cmd, toBatchJSON(result)); err != nil {
						return err
					}
				} else {
					printBatchSummary(cmd, result, len(entries))
				}
				if runErr != nil {
					return runErr
				}
				if len(result.Failures) > 0 {
					return fmt.Errorf("%d of %d videos failed", len(result.Failures), len(entries))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Voice, "voice", "", "Voice ID for every entry (defaults to tts.voice)")
	cmd.Flags().Float64Var(&opts.Speed, "speed", 0, "Speech speed 0.25-4.0 (defaults to tts.speed)")
	cmd.Flags().BoolVar(&noClean, "no-clean", false, "Keep existing videos in the output directory")
	cmd.Flags().BoolVar(&noZip, "no-zip", false, "Skip bundling the rendered videos into a zip")
	cmd.Flags().BoolVar(&opts.StopOnError, "stop-on-error", false, "Abort at the first failed entry")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip preflight checks")
	return cmd
}

func toBatchJSON(result pipeline.BatchResult) batchJSON {
	out := batchJSON{
		BatchID:  result.BatchID,
		Outputs:  make([]outputJSON, 0, len(result.Outputs)),
		Failures: make([]failureJSON, 0, len(result.Failures)),
		Zip:      result.ZipPath,
	}
	for _, o := range result.Outputs {
		out.Outputs = append(out.Outputs, toOutputJSON(o))
	}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, failureJSON{
			Index: f.Index + 1,
			Title: f.Title,
			JobID: f.JobID,
			Kind:  services.Kind(f.Err),
			Error: f.Err.Error(),
		})
	}
	return out
}

func printBatchSummary(cmd *cobra.Command, result pipeline.BatchResult, total int) {
	w := cmd.OutOrStdout()
	if len(result.Outputs) > 0 {
		rows := make([][]string, 0, len(result.Outputs))
		for i, o := range result.Outputs {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				o.VideoPath,
				strconv.Itoa(o.Captions),
				formatSeconds(o.AudioSeconds),
			})
		}
		fmt.Fprint(w, renderTable(
			[]string{"#", "Video", "Captions", "Seconds"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
		))
	}
	for _, f := range result.Failures {
		fmt.Fprintf(w, "Entry %d (%s) failed: %v\n", f.Index+1, truncate(f.Title, 40), f.Err)
	}
	fmt.Fprintf(w, "Batch %s: %d/%d rendered\n", result.BatchID, len(result.Outputs), total)
	if result.ZipPath != "" {
		fmt.Fprintf(w, "Archive %s\n", result.ZipPath)
	}
	if len(result.Failures) > 0 {
		fmt.Fprintln(w, "Failed entries are recorded in `reelforge jobs list --status failed`.")
	}
}
