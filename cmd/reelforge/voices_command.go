package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/services/kokoro"
)

func newVoicesCommand() *cobra.Command {
	var language string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "voices",
		Short:       "List the available narration voices",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := strings.ToLower(strings.TrimSpace(language))
			var voices []kokoro.Voice
			for _, v := range kokoro.Voices() {
				if filter != "" && !strings.Contains(strings.ToLower(v.Language), filter) {
					continue
				}
				voices = append(voices, v)
			}
			if jsonOut {
				if voices == nil {
					voices = []kokoro.Voice{}
				}
				return writeJSON(cmd, voices)
			}
			if len(voices) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No voices match %q\n", language)
				return nil
			}
			rows := make([][]string, 0, len(voices))
			for _, v := range voices {
				rows = append(rows, []string{v.ID, v.Name, v.Language, v.Gender})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Language", "Gender"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Filter by language (substring match)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the catalogue as JSON")
	return cmd
}
