// Package ttscache keeps synthesized narration on disk so re-rendering a
// script does not hit the speech backend again.
//
// Entries are keyed by a BLAKE3 digest of everything that influences the
// audio: model, voice, speed, format and input text. Each entry is an audio
// file plus a JSON sidecar with the word timestamps.
package ttscache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/alignment"
	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
)

// Key identifies one synthesis request.
type Key struct {
	Model  string
	Voice  string
	Speed  float64
	Format string
	Input  string
}

// Digest returns the hex BLAKE3 digest of the key fields.
func (k Key) Digest() string {
	parts := []string{
		strings.TrimSpace(k.Model),
		strings.TrimSpace(k.Voice),
		strconv.FormatFloat(k.Speed, 'f', 3, 64),
		strings.ToLower(strings.TrimSpace(k.Format)),
		strings.TrimSpace(k.Input),
	}
	digest, _ := fileutil.HashReader(strings.NewReader(strings.Join(parts, "\x00")))
	return digest
}

// Entry is a cached narration.
type Entry struct {
	AudioPath string
	Tokens    []alignment.Token
	CachedAt  time.Time
}

type sidecar struct {
	Model    string            `json:"model"`
	Voice    string            `json:"voice"`
	Speed    float64           `json:"speed"`
	Format   string            `json:"format"`
	CachedAt time.Time         `json:"cached_at"`
	Tokens   []alignment.Token `json:"timestamps"`
}

// Cache stores narration under a directory. A Cache with an empty directory
// is disabled: lookups miss and stores are ignored.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New creates a cache rooted at dir.
func New(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{dir: strings.TrimSpace(dir), logger: logging.NewComponentLogger(logger, "ttscache")}
}

// Enabled reports whether the cache has a backing directory.
func (c *Cache) Enabled() bool {
	return c != nil && c.dir != ""
}

func (c *Cache) paths(key Key) (audio, meta string) {
	digest := key.Digest()
	shard := filepath.Join(c.dir, digest[:2])
	format := strings.ToLower(strings.TrimSpace(key.Format))
	if format == "" {
		format = "bin"
	}
	return filepath.Join(shard, digest+"."+format), filepath.Join(shard, digest+".json")
}

// Lookup returns the cached entry for key. A corrupt or partial entry is
// treated as a miss.
func (c *Cache) Lookup(key Key) (Entry, bool) {
	if !c.Enabled() {
		return Entry{}, false
	}
	audioPath, metaPath := c.paths(key)

	info, err := os.Stat(audioPath)
	if err != nil || info.Size() == 0 {
		c.logMiss(key, "audio_unavailable")
		return Entry{}, false
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		c.logMiss(key, "sidecar_unavailable")
		return Entry{}, false
	}
	var meta sidecar
	if err := json.Unmarshal(data, &meta); err != nil {
		c.logger.Warn("tts cache entry rejected",
			logging.String(logging.FieldEventType, "tts_cache_rejected"),
			logging.String(logging.FieldErrorHint, "sidecar JSON unreadable"),
			logging.String(logging.FieldImpact, "narration will be synthesized again"),
			logging.String("path", metaPath),
			logging.Error(err),
		)
		return Entry{}, false
	}
	if err := alignment.ValidateTokens(meta.Tokens); err != nil {
		c.logMiss(key, "invalid_timestamps")
		return Entry{}, false
	}

	c.logger.Debug("tts cache hit",
		logging.String(logging.FieldDecisionType, "tts_cache"),
		logging.String("decision_result", "hit"),
		logging.String("decision_reason", "digest_match"),
		logging.String("voice", key.Voice),
		logging.String("audio_path", audioPath),
		logging.Int("tokens", len(meta.Tokens)),
	)
	return Entry{AudioPath: audioPath, Tokens: meta.Tokens, CachedAt: meta.CachedAt}, true
}

// Store saves audio and tokens for key and returns the cached audio path.
func (c *Cache) Store(key Key, audio []byte, tokens []alignment.Token) (string, error) {
	if !c.Enabled() {
		return "", nil
	}
	if len(audio) == 0 {
		return "", errors.New("tts cache: audio is empty")
	}
	audioPath, metaPath := c.paths(key)
	if err := fileutil.WriteFileAtomic(audioPath, audio, 0o644); err != nil {
		return "", fmt.Errorf("tts cache: write audio: %w", err)
	}
	data, err := json.MarshalIndent(sidecar{
		Model:    key.Model,
		Voice:    key.Voice,
		Speed:    key.Speed,
		Format:   key.Format,
		CachedAt: time.Now().UTC(),
		Tokens:   tokens,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("tts cache: encode sidecar: %w", err)
	}
	if err := fileutil.WriteFileAtomic(metaPath, data, 0o644); err != nil {
		return "", fmt.Errorf("tts cache: write sidecar: %w", err)
	}
	return audioPath, nil
}

// Purge removes every cached entry and reports how many were deleted.
func (c *Cache) Purge() (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("tts cache: scan: %w", err)
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return 0, fmt.Errorf("tts cache: remove: %w", err)
	}
	return removed, nil
}

func (c *Cache) logMiss(key Key, reason string) {
	c.logger.Debug("tts cache miss",
		logging.String(logging.FieldDecisionType, "tts_cache"),
		logging.String("decision_result", "miss"),
		logging.String("decision_reason", reason),
		logging.String("voice", key.Voice),
	)
}
