package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"reelforge/internal/alignment"
	"reelforge/internal/captions"
	"reelforge/internal/config"
	"reelforge/internal/fileutil"
	"reelforge/internal/jobs"
	"reelforge/internal/logging"
	"reelforge/internal/media/audio"
	"reelforge/internal/media/ffprobe"
	"reelforge/internal/notifications"
	"reelforge/internal/render"
	"reelforge/internal/services"
	"reelforge/internal/services/kokoro"
	"reelforge/internal/ttscache"
)

// Synthesizer produces narration audio with word timestamps.
type Synthesizer interface {
	Synthesize(ctx context.Context, req kokoro.Request) (*kokoro.Speech, error)
	Format() string
	Model() string
}

// Renderer encodes the final video.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (render.Result, error)
}

// DurationProbe measures a media file in seconds.
type DurationProbe func(ctx context.Context, path string) (float64, error)

// Request is one title/body pair to turn into a video.
type Request struct {
	Title string
	Body  string
	// Voice and Speed fall back to the configured defaults when empty.
	Voice string
	Speed float64
}

// Output describes a finished video.
type Output struct {
	JobID        string
	VideoPath    string
	SRTPath      string
	TitleEnd     float64
	Captions     int
	AudioSeconds float64
	CacheHit     bool
}

// Generator runs the generation pipeline.
type Generator struct {
	cfg        *config.Config
	logger     *slog.Logger
	tts        Synthesizer
	cache      *ttscache.Cache
	merger     *alignment.Merger
	store      *jobs.Store
	renderer   Renderer
	style      captions.Style
	pick       render.Picker
	probeAudio DurationProbe
	probeVideo DurationProbe
	notifier   notifications.Service
}

// Option customizes a Generator.
type Option func(*Generator)

// WithSynthesizer replaces the HTTP speech client.
func WithSynthesizer(s Synthesizer) Option {
	return func(g *Generator) {
		if s != nil {
			g.tts = s
		}
	}
}

// WithRenderer replaces the ffmpeg renderer.
func WithRenderer(r Renderer) Option {
	return func(g *Generator) {
		if r != nil {
			g.renderer = r
		}
	}
}

// WithStore records jobs in store. Without it, history is not kept.
func WithStore(store *jobs.Store) Option {
	return func(g *Generator) {
		g.store = store
	}
}

// WithNotifier replaces the ntfy notifier built from config.
func WithNotifier(n notifications.Service) Option {
	return func(g *Generator) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithBackgroundPicker overrides random background selection.
func WithBackgroundPicker(pick render.Picker) Option {
	return func(g *Generator) {
		g.pick = pick
	}
}

// WithDurationProbes overrides how narration and background lengths are measured.
func WithDurationProbes(audioProbe, videoProbe DurationProbe) Option {
	return func(g *Generator) {
		if audioProbe != nil {
			g.probeAudio = audioProbe
		}
		if videoProbe != nil {
			g.probeVideo = videoProbe
		}
	}
}

// New builds a Generator from cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: nil config")
	}
	logger = logging.NewComponentLogger(logger, "pipeline")

	cacheDir := ""
	if cfg.TTS.CacheEnabled {
		cacheDir = cfg.AudioCacheDir()
	}
	ffprobeBin := cfg.Render.FFprobeBinary

	g := &Generator{
		cfg:    cfg,
		logger: logger,
		tts: kokoro.NewClient(kokoro.Config{
			BaseURL:        cfg.TTS.BaseURL,
			Endpoint:       cfg.TTS.Endpoint,
			Model:          cfg.TTS.Model,
			ResponseFormat: cfg.TTS.ResponseFormat,
			TimeoutSeconds: cfg.TTS.TimeoutSeconds,
		}, kokoro.WithRetryMaxAttempts(cfg.TTS.MaxAttempts)),
		cache: ttscache.New(cacheDir, logger),
		merger: alignment.NewMerger(alignment.MergeConfig{
			MergeWords:         cfg.Captions.MergeWords,
			AllowedPunctuation: cfg.Captions.AllowedPunctuation,
			RemovedPunctuation: cfg.Captions.RemovedPunctuation,
		}),
		renderer: render.NewRenderer(render.SettingsFromConfig(cfg), logger),
		style:    StyleFromConfig(cfg),
		probeAudio: func(ctx context.Context, path string) (float64, error) {
			return audio.Duration(ctx, ffprobeBin, path)
		},
		probeVideo: func(ctx context.Context, path string) (float64, error) {
			return ffprobe.Duration(ctx, ffprobeBin, path)
		},
		notifier: notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// StyleFromConfig maps render settings onto the caption style.
func StyleFromConfig(cfg *config.Config) captions.Style {
	style := captions.DefaultStyle()
	style.Width = cfg.Render.Width
	style.Height = cfg.Render.Height
	style.Font = cfg.Render.CaptionFont
	style.CaptionSize = cfg.Render.CaptionFontSize
	style.TitleSize = cfg.Render.TitleFontSize
	style.Stroke = cfg.Render.CaptionStroke
	style.CaptionY = cfg.Render.CaptionY
	return style
}

// Make renders a single video while holding the output directory lock.
func (g *Generator) Make(ctx context.Context, req Request) (Output, error) {
	lock, err := acquireLock(g.cfg.Paths.OutputDir)
	if err != nil {
		return Output{}, err
	}
	defer func() { _ = lock.Unlock() }()

	g.recoverInterrupted(ctx)
	out, err := g.generate(ctx, req, "")
	switch {
	case err == nil:
		g.notify(ctx, "video_completed", func(ctx context.Context) error {
			return g.notifier.NotifyVideoCompleted(ctx, req.Title, out.VideoPath)
		})
	case !errors.Is(err, services.ErrValidation) && !errors.Is(err, context.Canceled):
		g.notify(ctx, "error", func(ctx context.Context) error {
			return g.notifier.NotifyError(ctx, err, req.Title)
		})
	}
	return out, err
}

// notify delivers a notification after the work it reports on has finished,
// so it ignores cancellation of ctx. Failures are logged and otherwise dropped.
func (g *Generator) notify(ctx context.Context, event string, send func(context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "notification failed", "notification_failed",
			logging.String("notification", event),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no ntfy message for this event"),
		)
	}
}

func (g *Generator) recoverInterrupted(ctx context.Context) {
	if g.store == nil {
		return
	}
	n, err := g.store.MarkInterrupted(ctx)
	if err != nil {
		logging.WarnWithContext(g.logger, "could not mark interrupted jobs", "jobs_recover_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale jobs stay in a processing state"),
		)
		return
	}
	if n > 0 {
		g.logger.Info("marked interrupted jobs as failed", logging.Int64("count", n))
	}
}

func (g *Generator) normalize(req Request) (Request, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if req.Title == "" {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "title is required", nil)
	}
	if req.Body == "" {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", "body is required", nil)
	}
	if strings.TrimSpace(req.Voice) == "" {
		req.Voice = g.cfg.TTS.Voice
	}
	if !kokoro.KnownVoice(req.Voice) {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", fmt.Sprintf("unknown voice %q", req.Voice), nil)
	}
	if req.Speed == 0 {
		req.Speed = g.cfg.TTS.Speed
	}
	if req.Speed < 0.25 || req.Speed > 4 {
		return req, services.Wrap(services.ErrValidation, "pipeline", "request", fmt.Sprintf("speed %.2f outside 0.25-4.0", req.Speed), nil)
	}
	return req, nil
}

func (g *Generator) generate(ctx context.Context, req Request, batchID string) (out Output, err error) {
	req, err = g.normalize(req)
	if err != nil {
		return Output{}, err
	}

	job := &jobs.Job{BatchID: batchID, Title: req.Title, Voice: req.Voice, Speed: req.Speed}
	if g.store != nil {
		if err := g.store.Create(ctx, job); err != nil {
			return Output{}, err
		}
	} else {
		job.ID = uuid.NewString()
	}
	ctx = services.WithJobID(ctx, job.ID)
	if batchID != "" {
		ctx = services.WithBatchID(ctx, batchID)
	}
	logger := logging.WithContext(ctx, g.logger)

	workDir := filepath.Join(g.cfg.WorkDir(), job.ID)
	defer func() {
		if err != nil {
			job.Fail(err)
			g.saveJob(context.WithoutCancel(ctx), logger, job)
			logger.Error("video generation failed",
				logging.String("title", req.Title),
				logging.String(logging.FieldEventType, "job_failed"),
				logging.String(logging.FieldErrorHint, errorHint(err)),
				logging.Error(err),
			)
			return
		}
		_ = os.RemoveAll(workDir)
	}()

	out.JobID = job.ID

	// Synthesis.
	g.advance(ctx, logger, job, jobs.StatusSynthesizing)
	narration, err := g.narrate(services.WithStage(ctx, "synthesizing"), logger, req, workDir)
	if err != nil {
		return out, err
	}
	out.CacheHit = narration.cacheHit
	if narration.cached {
		job.AudioPath = narration.audioPath
	}

	// Alignment and caption files.
	g.advance(ctx, logger, job, jobs.StatusAligning)
	aligned, err := alignment.Align(narration.tokens, req.Title, g.merger)
	if err != nil {
		return out, services.Wrap(services.ErrValidation, "aligning", "align tokens", "", err)
	}
	out.TitleEnd = aligned.TitleEnd
	out.Captions = len(aligned.Body)
	job.TitleEnd = aligned.TitleEnd
	job.CaptionCount = len(aligned.Body)
	logger.Info("narration aligned",
		logging.Int("raw_tokens", len(narration.tokens)),
		logging.Int("merged_tokens", len(aligned.Merged)),
		logging.Int("captions", len(aligned.Body)),
		logging.Float64("title_end", aligned.TitleEnd),
	)

	audioSeconds, err := g.probeAudio(services.WithStage(ctx, "aligning"), narration.audioPath)
	if err != nil {
		return out, services.Wrap(services.ErrExternalTool, "aligning", "probe audio", "", err)
	}
	out.AudioSeconds = audioSeconds
	job.AudioSeconds = audioSeconds

	assPath := filepath.Join(workDir, "captions.ass")
	if err := captions.WriteASS(assPath, g.style, captions.Document{
		Title:    req.Title,
		TitleEnd: aligned.TitleEnd,
		Body:     aligned.Body,
	}); err != nil {
		return out, err
	}

	// Render.
	g.advance(ctx, logger, job, jobs.StatusRendering)
	renderCtx := services.WithStage(ctx, "rendering")
	background, err := render.PickBackground(g.cfg.Paths.BackgroundDir, g.pick)
	if err != nil {
		return out, err
	}
	bgSeconds, probeErr := g.probeVideo(renderCtx, background)
	if probeErr != nil {
		logger.Debug("background duration unknown; assuming it covers the narration",
			logging.String("background", background),
			logging.Error(probeErr),
		)
		bgSeconds = 0
	}
	logger.Info("background selected", logging.Args(append(
		logging.DecisionAttrs("background", filepath.Base(background), backgroundReason(bgSeconds, audioSeconds+g.cfg.Render.TailPaddingSeconds)),
		logging.Float64("background_seconds", bgSeconds),
	)...)...)
	outputPath, err := render.NextOutputPath(g.cfg.Paths.OutputDir)
	if err != nil {
		return out, err
	}
	result, err := g.renderer.Render(renderCtx, render.Request{
		AudioPath:         narration.audioPath,
		AudioSeconds:      audioSeconds,
		BackgroundPath:    background,
		BackgroundSeconds: bgSeconds,
		SubtitlePath:      assPath,
		TitleEnd:          aligned.TitleEnd,
		OutputPath:        outputPath,
	})
	if err != nil {
		return out, err
	}
	out.VideoPath = result.OutputPath
	job.OutputPath = result.OutputPath

	if g.cfg.Captions.WriteSRT {
		out.SRTPath = strings.TrimSuffix(result.OutputPath, filepath.Ext(result.OutputPath)) + ".srt"
		if err := captions.WriteSRT(out.SRTPath, aligned.Body); err != nil {
			return out, err
		}
		if issues := captions.ValidateSRT(out.SRTPath, audioSeconds); len(issues) > 0 {
			logging.WarnWithContext(logger, "caption sidecar has issues", "srt_validation",
				logging.String("srt", out.SRTPath),
				logging.String("issues", strings.Join(issues, "; ")),
				logging.String(logging.FieldImpact, "soft subtitles may be mistimed"),
			)
		}
	}
	job.Status = jobs.StatusCompleted
	job.ErrorKind, job.ErrorMessage = "", ""
	g.saveJob(ctx, logger, job)
	logger.Info("video complete",
		logging.String("output", out.VideoPath),
		logging.Float64("audio_seconds", audioSeconds),
		logging.Bool("tts_cache_hit", out.CacheHit),
	)
	return out, nil
}

func (g *Generator) advance(ctx context.Context, logger *slog.Logger, job *jobs.Job, status jobs.Status) {
	job.Status = status
	logger.Debug("job stage", logging.String(logging.FieldStage, string(status)))
	g.saveJob(ctx, logger, job)
}

func (g *Generator) saveJob(ctx context.Context, logger *slog.Logger, job *jobs.Job) {
	if g.store == nil {
		return
	}
	if err := g.store.Update(ctx, job); err != nil {
		logging.WarnWithContext(logger, "failed to persist job state", "job_persist_failed",
			logging.String("status", string(job.Status)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "job history may be stale"),
		)
	}
}

type narration struct {
	audioPath string
	tokens    []alignment.Token
	cacheHit  bool
	// cached is false when the audio only exists in the job work dir.
	cached bool
}

// narrate returns narration audio for title and body spoken together, reusing
// the on-disk cache when an identical request was synthesized before.
func (g *Generator) narrate(ctx context.Context, logger *slog.Logger, req Request, workDir string) (narration, error) {
	input := req.Title + " " + req.Body
	key := ttscache.Key{
		Model:  g.tts.Model(),
		Voice:  req.Voice,
		Speed:  req.Speed,
		Format: g.tts.Format(),
		Input:  input,
	}
	if entry, ok := g.cache.Lookup(key); ok {
		logger.Debug("narration cache decision", logging.Args(logging.DecisionAttrs("tts_cache", "hit", "identical input, voice and speed")...)...)
		return narration{audioPath: entry.AudioPath, tokens: entry.Tokens, cacheHit: true, cached: true}, nil
	}
	if g.cache.Enabled() {
		logger.Debug("narration cache decision", logging.Args(logging.DecisionAttrs("tts_cache", "miss", "no cached narration for this input")...)...)
	}

	speech, err := g.tts.Synthesize(ctx, kokoro.Request{Input: input, Voice: req.Voice, Speed: req.Speed})
	if err != nil {
		return narration{}, err
	}
	logger.Info("narration synthesized",
		logging.Int("audio_bytes", len(speech.Audio)),
		logging.Int("tokens", len(speech.Tokens)),
		logging.String("voice", req.Voice),
	)

	if g.cache.Enabled() {
		path, err := g.cache.Store(key, speech.Audio, speech.Tokens)
		if err == nil {
			return narration{audioPath: path, tokens: speech.Tokens, cached: true}, nil
		}
		logging.WarnWithContext(logger, "tts cache store failed", "tts_cache_store_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "narration kept in work dir only"),
		)
	}

	path := filepath.Join(workDir, "narration."+speech.Format)
	if err := fileutil.WriteFileAtomic(path, speech.Audio, 0o644); err != nil {
		return narration{}, fmt.Errorf("save narration: %w", err)
	}
	return narration{audioPath: path, tokens: speech.Tokens}, nil
}

func backgroundReason(bgSeconds, needed float64) string {
	switch {
	case bgSeconds <= 0:
		return "duration unknown"
	case bgSeconds < needed:
		return "shorter than narration; looped"
	default:
		return "covers narration"
	}
}

func errorHint(err error) string {
	if services.Retryable(err) {
		return "check that the speech backend is running and retry"
	}
	switch services.Kind(err) {
	case "validation":
		return "fix the request and run again"
	case "configuration":
		return "run `reelforge doctor` to check paths and binaries"
	case "external_tool":
		return "inspect ffmpeg/ffprobe output in the debug log"
	default:
		return "see error for details"
	}
}
