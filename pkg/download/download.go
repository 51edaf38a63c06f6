package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// PartSuffix is appended to a destination while it is being written
const PartSuffix = ".part"

// ErrChecksumMismatch is returned when the downloaded bytes do not hash to
// the expected sha256
var ErrChecksumMismatch = errors.New("checksum mismatch")

// DownloadOptions configures the download behavior
type DownloadOptions struct {
	MaxSize      int64         // Maximum file size in bytes (0 = no limit)
	Timeout      time.Duration // Per-attempt timeout
	Retries      int           // Attempts before giving up
	ProgressFunc ProgressFunc  // Optional progress callback
	ShowProgress bool          // Render a progress bar when stderr is a terminal
	UserAgent    string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// ProgressFunc is called during download to report progress
type ProgressFunc func(downloaded, total int64)

// DefaultOptions returns default download options
func DefaultOptions() DownloadOptions {
	return DownloadOptions{
		Timeout:   30 * time.Minute,
		Retries:   3,
		UserAgent: "transcribe-api/1",
	}
}

// DownloadResult contains information about a successful download
type DownloadResult struct {
	FilePath      string
	ContentLength int64
	SHA256        string
}

// Downloader fetches files into place through a temporary .part file
type Downloader struct {
	client  *http.Client
	options DownloadOptions
	logger  *zap.Logger
}

// NewDownloader creates a new downloader with the given options
func NewDownloader(options DownloadOptions) *Downloader {
	if options.Retries <= 0 {
		options.Retries = 1
	}
	if options.UserAgent == "" {
		options.UserAgent = DefaultOptions().UserAgent
	}

	client := options.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Downloader{client: client, options: options, logger: logger}
}

// DownloadFile downloads url to destination, verifying expectedSHA256 when
// it is non-empty. The destination only appears once the bytes are complete
// and verified. progress overrides the configured ProgressFunc when non-nil.
func (d *Downloader) DownloadFile(ctx context.Context, url, destination, expectedSHA256 string, progress ProgressFunc) (*DownloadResult, error) {
	if url == "" {
		return nil, errors.New("download URL is required")
	}
	if destination == "" {
		return nil, errors.New("destination path is required")
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	expected := strings.ToLower(strings.TrimSpace(expectedSHA256))
	if progress == nil {
		progress = d.options.ProgressFunc
	}

	var lastErr error
	for attempt := 1; attempt <= d.options.Retries; attempt++ {
		if attempt > 1 {
			d.logger.Warn("retrying download",
				zap.Int("attempt", attempt),
				zap.Int("max", d.options.Retries),
				zap.String("url", url),
				zap.Error(lastErr))

			select {
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := d.downloadOnce(ctx, url, destination, expected, progress)
		if err == nil {
			d.logger.Debug("download complete",
				zap.String("path", result.FilePath),
				zap.Int64("bytes", result.ContentLength))
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func (d *Downloader) downloadOnce(ctx context.Context, url, destination, expected string, progress ProgressFunc) (*DownloadResult, error) {
	tempPath := destination + PartSuffix
	_ = os.Remove(tempPath)

	outFile, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	success := false
	defer func() {
		_ = outFile.Close()
		if !success {
			_ = os.Remove(tempPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.options.UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	contentLength := resp.ContentLength
	if d.options.MaxSize > 0 && contentLength > d.options.MaxSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", contentLength, d.options.MaxSize)
	}

	hash := sha256.New()
	writer := io.MultiWriter(outFile, hash)

	var bar *progressbar.ProgressBar
	if d.shouldRenderProgress(contentLength) {
		bar = progressbar.NewOptions64(
			contentLength,
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		writer = io.MultiWriter(outFile, hash, bar)
	}

	written, err := copyWithProgress(writer, resp.Body, contentLength, d.options.MaxSize, progress)
	if err != nil {
		return nil, fmt.Errorf("download body: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err := outFile.Sync(); err != nil {
		return nil, fmt.Errorf("sync temp file: %w", err)
	}

	actual := hex.EncodeToString(hash.Sum(nil))
	if expected != "" && actual != expected {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, actual)
	}

	if err := outFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, destination); err != nil {
		return nil, fmt.Errorf("move temp file into destination: %w", err)
	}

	success = true
	return &DownloadResult{FilePath: destination, ContentLength: written, SHA256: actual}, nil
}

func (d *Downloader) shouldRenderProgress(contentLength int64) bool {
	if !d.options.ShowProgress || contentLength <= 0 {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// copyWithProgress downloads response body with optional progress tracking
func copyWithProgress(dst io.Writer, src io.Reader, total, maxSize int64, progress ProgressFunc) (int64, error) {
	if total < 0 {
		total = 0
	}

	reader := src
	if progress != nil {
		reader = &progressReader{
			reader:   src,
			total:    total,
			callback: progress,
		}
	}

	if maxSize > 0 {
		// one extra byte detects bodies that exceed the limit
		reader = &io.LimitedReader{R: reader, N: maxSize + 1}
	}

	n, err := io.Copy(dst, reader)
	if err != nil {
		return n, err
	}
	if maxSize > 0 && n > maxSize {
		return n, fmt.Errorf("file too large: exceeds %d bytes", maxSize)
	}
	return n, nil
}

// VerifyFileChecksum hashes path and compares it with expectedSHA256.
// An empty expectation always passes.
func VerifyFileChecksum(path, expectedSHA256 string) error {
	expected := strings.ToLower(strings.TrimSpace(expectedSHA256))
	if expected == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	if actual := hex.EncodeToString(h.Sum(nil)); actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// CleanupPartialFiles removes .part files in dir older than maxAge
func CleanupPartialFiles(dir string, maxAge time.Duration) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+PartSuffix))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// progressReader wraps a reader to report progress
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	callback   ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.downloaded += int64(n)
		if pr.callback != nil {
			pr.callback(pr.downloaded, pr.total)
		}
	}
	return n, err
}
