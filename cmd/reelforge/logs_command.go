package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/logs"
	"reelforge/internal/services"
)

const logFileName = "reelforge.log"

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow, raw bool
	var filter logs.Filter
	var level string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the structured log, optionally for one job or batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if level != "" {
				var minLevel slog.Level
				if err := minLevel.UnmarshalText([]byte(level)); err != nil {
					return services.Wrap(services.ErrValidation, "cli", "logs", fmt.Sprintf("unknown level %q", level), nil)
				}
				filter.MinLevel = &minLevel
			}
			path := filepath.Join(cfg.Paths.LogDir, logFileName)
			out := cmd.OutOrStdout()

			// Filtering happens after the tail, so widen the window when a
			// filter is set.
			limit := lines
			if filter != (logs.Filter{}) && limit > 0 {
				limit *= 20
			}
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: limit})
			if err != nil {
				return err
			}
			printed := printLogLines(out, lastMatching(result.Lines, filter, lines), filter, raw)
			if !follow {
				if printed == 0 {
					fmt.Fprintf(out, "No matching log lines in %s\n", path)
				}
				return nil
			}

			offset := result.Offset
			for {
				next, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: offset, Follow: true, Wait: time.Second})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				offset = next.Offset
				printLogLines(out, next.Lines, filter, raw)
				if cmd.Context().Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show (0 for none)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the JSON lines unchanged")
	cmd.Flags().StringVar(&filter.JobID, "job", "", "Only lines for this job ID (prefix)")
	cmd.Flags().StringVar(&filter.BatchID, "batch", "", "Only lines for this batch ID")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	return cmd
}

// lastMatching keeps the final limit lines that pass the filter.
func lastMatching(lines []string, filter logs.Filter, limit int) []string {
	if filter == (logs.Filter{}) {
		return lines
	}
	var kept []string
	for _, line := range lines {
		if entry, ok := logs.ParseLine(line); ok && filter.Match(entry) {
			kept = append(kept, line)
		}
	}
	if limit > 0 && len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return kept
}

func printLogLines(w io.Writer, lines []string, filter logs.Filter, raw bool) int {
	printed := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, ok := logs.ParseLine(line)
		if !ok {
			if filter == (logs.Filter{}) {
				fmt.Fprintln(w, line)
				printed++
			}
			continue
		}
		if !filter.Match(entry) {
			continue
		}
		if raw {
			fmt.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, logs.Format(entry))
		}
		printed++
	}
	return printed
}
