package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/alignment"
	"reelforge/internal/config"
	"reelforge/internal/services"
)

type alignJSON struct {
	TitleEnd float64           `json:"title_end"`
	Merged   []alignment.Token `json:"merged"`
	Body     []alignment.Token `json:"body"`
}

func newAlignCommand() *cobra.Command {
	var title string
	var jsonOut bool
	var mergeWords, allowed, removed []string

	cmd := &cobra.Command{
		Use:   "align [tokens.json]",
		Short: "Find the title boundary and merge caption tokens",
		Long: `Read a JSON array of {"word","start_time","end_time"} tokens (from a file
or stdin), locate where the spoken title ends and print the merged body
captions. No speech backend or ffmpeg is needed.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readTokens(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			tokens, err := alignment.DecodeTokens(data)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "decode tokens", "", err)
			}

			merger := alignment.NewMerger(alignment.MergeConfig{
				MergeWords:         dropBlank(mergeWords),
				AllowedPunctuation: dropBlank(allowed),
				RemovedPunctuation: dropBlank(removed),
			})
			result, err := alignment.Align(tokens, title, merger)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "align", "", err)
			}
			if jsonOut {
				return writeJSON(cmd, alignJSON{TitleEnd: result.TitleEnd, Merged: result.Merged, Body: result.Body})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Title ends at %ss (%d raw tokens, %d merged, %d body captions)\n",
				formatSeconds(result.TitleEnd), len(tokens), len(result.Merged), len(result.Body))
			rows := make([][]string, 0, len(result.Body))
			for i, tok := range result.Body {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					formatSeconds(tok.StartTime),
					formatSeconds(tok.EndTime),
					tok.Word,
				})
			}
			if len(rows) > 0 {
				fmt.Fprint(w, renderTable(
					[]string{"#", "Start", "End", "Caption"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
				))
			}
			return nil
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVarP(&title, "title", "t", "", "Title text that was narrated first")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	// Repeatable rather than comma separated: "," is itself a punctuation value.
	cmd.Flags().StringArrayVar(&mergeWords, "merge-words", defaults.Captions.MergeWords, "Word joined with the word after it (repeatable; \"\" for none)")
	cmd.Flags().StringArrayVar(&allowed, "allowed-punctuation", defaults.Captions.AllowedPunctuation, "Punctuation appended to the previous caption (repeatable)")
	cmd.Flags().StringArrayVar(&removed, "removed-punctuation", defaults.Captions.RemovedPunctuation, "Punctuation token dropped (repeatable)")
	return cmd
}

func dropBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func readTokens(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read tokens from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}
	return data, nil
}
