package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/pipeline"
	"reelforge/internal/services"
)

type outputJSON struct {
	JobID        string  `json:"job_id"`
	Video        string  `json:"video"`
	Subtitles    string  `json:"subtitles,omitempty"`
	TitleEnd     float64 `json:"title_end"`
	Captions     int     `json:"captions"`
	AudioSeconds float64 `json:"audio_seconds"`
	CacheHit     bool    `json:"tts_cache_hit"`
}

func toOutputJSON(out pipeline.Output) outputJSON {
	return outputJSON{
		JobID:        out.JobID,
		Video:        out.VideoPath,
		Subtitles:    out.SRTPath,
		TitleEnd:     out.TitleEnd,
		Captions:     out.Captions,
		AudioSeconds: out.AudioSeconds,
		CacheHit:     out.CacheHit,
	}
}

func newMakeCommand(ctx *commandContext) *cobra.Command {
	var title, body, bodyFile, voice string
	var speed float64
	var jsonOut, skipChecks bool

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Render one video from a title and body",
		Example: `  reelforge make --title "Big news" --body "The cats have taken over."
  reelforge make --title "Story time" --body-file story.txt --voice am_adam`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := resolveBody(cmd.InOrStdin(), body, bodyFile)
			if err != nil {
				return err
			}
			return ctx.withGenerator(cmd, skipChecks, func(gen *pipeline.Generator) error {
				out, err := gen.Make(cmd.Context(), pipeline.Request{
					Title: title,
					Body:  text,
					Voice: voice,
					Speed: speed,
				})
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, toOutputJSON(out))
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Rendered %s\n", out.VideoPath)
				if out.SRTPath != "" {
					fmt.Fprintf(w, "Subtitles %s\n", out.SRTPath)
				}
				fmt.Fprintf(w, "Job %s: %d captions, title ends at %ss, narration %ss (cache hit: %s)\n",
					shortID(out.JobID), out.Captions, formatSeconds(out.TitleEnd), formatSeconds(out.AudioSeconds), yesNo(out.CacheHit))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title spoken first and shown on the title card")
	cmd.Flags().StringVarP(&body, "body", "b", "", "Body text")
	cmd.Flags().StringVarP(&bodyFile, "body-file", "f", "", "Read the body from a file (- for stdin)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice ID (defaults to tts.voice)")
	cmd.Flags().Float64Var(&speed, "speed", 0, "Speech speed 0.25-4.0 (defaults to tts.speed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip preflight checks")
	_ = cmd.MarkFlagRequired("title")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
	return cmd
}

func resolveBody(stdin io.Reader, body, bodyFile string) (string, error) {
	switch {
	case strings.TrimSpace(bodyFile) == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read body from stdin: %w", err)
		}
		return string(data), nil
	case strings.TrimSpace(bodyFile) != "":
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return "", fmt.Errorf("read body file: %w", err)
		}
		return string(data), nil
	case strings.TrimSpace(body) != "":
		return body, nil
	default:
		return "", services.Wrap(services.ErrValidation, "cli", "make", "one of --body or --body-file is required", nil)
	}
}
