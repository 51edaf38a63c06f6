// Package whisper runs speech recognition with the whisper.cpp command line
// tool and manages the ggml models it needs.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/killallgit/transcribe-api/internal/services/transcription"
)

// ErrVADModelMissing is returned when VAD filtering is requested but no VAD
// model is configured
var ErrVADModelMissing = errors.New("vad filter requested but no vad model is configured")

// CLIEngineOptions configures a CLIEngine
type CLIEngineOptions struct {
	Executable   string
	Threads      int
	VADModelPath string
	TempDir      string
	Logger       *zap.Logger
}

// CLIEngine runs whisper-cli once per recognition request
type CLIEngine struct {
	executable   string
	threads      int
	vadModelPath string
	tempDir      string
	logger       *zap.Logger
}

// NewCLIEngine creates an engine invoking opts.Executable
func NewCLIEngine(opts CLIEngineOptions) *CLIEngine {
	if opts.Executable == "" {
		opts.Executable = engineBinaryName()
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &CLIEngine{
		executable:   opts.Executable,
		threads:      opts.Threads,
		vadModelPath: opts.VADModelPath,
		tempDir:      opts.TempDir,
		logger:       opts.Logger,
	}
}

// Validate checks the executable can be found
func (e *CLIEngine) Validate() error {
	if _, err := exec.LookPath(e.executable); err != nil {
		return fmt.Errorf("whisper engine %s not found: %w", e.executable, err)
	}
	return nil
}

// Transcribe runs whisper-cli and parses its JSON output
func (e *CLIEngine) Transcribe(ctx context.Context, req transcription.EngineRequest) (*transcription.EngineResult, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return nil, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return nil, errors.New("model path is required")
	}
	if req.VADFilter && e.vadModelPath == "" {
		return nil, ErrVADModelMissing
	}

	outBase := filepath.Join(e.tempDir, "whisper-"+uuid.NewString())
	jsonOut := outBase + ".json"
	defer os.Remove(jsonOut)

	args := e.buildArgs(req, outBase)

	cmd := exec.CommandContext(ctx, e.executable, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Debug("running whisper engine",
		zap.String("engine", e.executable),
		zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return nil, fmt.Errorf("whisper engine at %s is missing required shared libraries (%s)", e.executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return nil, fmt.Errorf("whisper engine crashed with an illegal CPU instruction; rebuild whisper-cli for this CPU")
		}
		return nil, fmt.Errorf("whisper transcribe failed: %w (%s)", err, lastLine(errText))
	}

	content, err := os.ReadFile(jsonOut)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	return parseOutput(content, req.Language)
}

func (e *CLIEngine) buildArgs(req transcription.EngineRequest, outBase string) []string {
	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-np", "-oj", "-of", outBase}

	if e.threads > 0 {
		args = append(args, "-t", strconv.Itoa(e.threads))
	}

	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = "auto"
	}
	args = append(args, "-l", lang)

	if req.VADFilter {
		args = append(args, "--vad", "-vm", e.vadModelPath)
	}
	return args
}

type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseOutput joins the segments of a whisper-cli JSON file. Duration is
// the end offset of the last segment.
func parseOutput(content []byte, requestedLanguage string) (*transcription.EngineResult, error) {
	var out cliOutput
	if err := json.Unmarshal(content, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	var sb strings.Builder
	var endMillis int64
	for _, seg := range out.Transcription {
		sb.WriteString(seg.Text)
		if seg.Offsets.To > endMillis {
			endMillis = seg.Offsets.To
		}
	}

	language := out.Result.Language
	if language == "" && requestedLanguage != "auto" {
		language = requestedLanguage
	}

	return &transcription.EngineResult{
		Text:     strings.TrimSpace(sb.String()),
		Language: language,
		Duration: float64(endMillis) / 1000,
	}, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func engineBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
