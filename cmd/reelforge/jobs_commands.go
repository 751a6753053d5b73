package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/jobs"
	"reelforge/internal/services"
)

type jobJSON struct {
	ID           string  `json:"id"`
	BatchID      string  `json:"batch_id,omitempty"`
	Title        string  `json:"title"`
	Voice        string  `json:"voice"`
	Speed        float64 `json:"speed"`
	Status       string  `json:"status"`
	TitleEnd     float64 `json:"title_end"`
	CaptionCount int     `json:"caption_count"`
	AudioSeconds float64 `json:"audio_seconds"`
	OutputPath   string  `json:"output_path,omitempty"`
	ErrorKind    string  `json:"error_kind,omitempty"`
	Error        string  `json:"error,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toJobJSON(j *jobs.Job) jobJSON {
	return jobJSON{
		ID:           j.ID,
		BatchID:      j.BatchID,
		Title:        j.Title,
		Voice:        j.Voice,
		Speed:        j.Speed,
		Status:       string(j.Status),
		TitleEnd:     j.TitleEnd,
		CaptionCount: j.CaptionCount,
		AudioSeconds: j.AudioSeconds,
		OutputPath:   j.OutputPath,
		ErrorKind:    j.ErrorKind,
		Error:        j.ErrorMessage,
		CreatedAt:    j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    j.UpdatedAt.Format(time.RFC3339),
	}
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the generation history",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsStatusCommand(ctx))
	jobsCmd.AddCommand(newJobsClearCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var batchID string
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := jobs.ListOptions{BatchID: strings.TrimSpace(batchID), Limit: limit}
			for _, raw := range statuses {
				status, ok := jobs.ParseStatus(raw)
				if !ok {
					return services.Wrap(services.ErrValidation, "cli", "jobs list", fmt.Sprintf("unknown status %q", raw), nil)
				}
				opts.Statuses = append(opts.Statuses, status)
			}

			return ctx.withStore(func(store *jobs.Store) error {
				items, err := store.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if jsonOut {
					out := make([]jobJSON, 0, len(items))
					for _, j := range items {
						out = append(out, toJobJSON(j))
					}
					return writeJSON(cmd, out)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Status", "Captions", "Created", "Output"},
					buildJobRows(items),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().StringVar(&batchID, "batch", "", "Only jobs from this batch ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print jobs as JSON")
	return cmd
}

func buildJobRows(items []*jobs.Job) [][]string {
	rows := make([][]string, 0, len(items))
	for _, j := range items {
		detail := j.OutputPath
		if j.Status == jobs.StatusFailed || j.Status == jobs.StatusCanceled {
			detail = truncate(j.ErrorMessage, 60)
		}
		rows = append(rows, []string{
			shortID(j.ID),
			truncate(j.Title, 32),
			string(j.Status),
			strconv.Itoa(j.CaptionCount),
			formatWhen(j.CreatedAt),
			detail,
		})
	}
	return rows
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job (a unique ID prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				job, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return services.Wrap(services.ErrNotFound, "cli", "jobs show", fmt.Sprintf("no job matches %q", args[0]), nil)
				}
				if jsonOut {
					return writeJSON(cmd, toJobJSON(job))
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "ID:         %s\n", job.ID)
				if job.BatchID != "" {
					fmt.Fprintf(w, "Batch:      %s\n", job.BatchID)
				}
				fmt.Fprintf(w, "Title:      %s\n", truncate(job.Title, 80))
				fmt.Fprintf(w, "Status:     %s\n", job.Status)
				fmt.Fprintf(w, "Voice:      %s @ %sx\n", job.Voice, formatSeconds(job.Speed))
				fmt.Fprintf(w, "Title end:  %ss\n", formatSeconds(job.TitleEnd))
				fmt.Fprintf(w, "Captions:   %d\n", job.CaptionCount)
				fmt.Fprintf(w, "Narration:  %ss\n", formatSeconds(job.AudioSeconds))
				if job.OutputPath != "" {
					fmt.Fprintf(w, "Output:     %s\n", job.OutputPath)
				}
				if job.ErrorMessage != "" {
					fmt.Fprintf(w, "Error:      [%s] %s\n", job.ErrorKind, job.ErrorMessage)
				}
				fmt.Fprintf(w, "Created:    %s\n", formatWhen(job.CreatedAt))
				fmt.Fprintf(w, "Updated:    %s\n", formatWhen(job.UpdatedAt))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the job as JSON")
	return cmd
}

func newJobsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Count jobs by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *jobs.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				var rows [][]string
				for _, status := range jobs.AllStatuses() {
					if count := stats[status]; count > 0 {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func newJobsClearCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete finished jobs from the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cutoff time.Time
			if olderThan > 0 {
				cutoff = time.Now().Add(-olderThan)
			}
			return ctx.withStore(func(store *jobs.Store) error {
				removed, err := store.ClearFinished(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d finished jobs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only clear jobs last updated before this age (e.g. 168h)")
	return cmd
}
