package scanning

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Runner lets tests stub the tesseract binary
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	if err != nil {
		slog.Error("exec failed",
			"cmd", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		slog.Debug("exec ok",
			"cmd", name,
			"duration_ms", time.Since(start).Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// TesseractConfig configures the tesseract command line
type TesseractConfig struct {
	Binary      string // binary name or absolute path; default "tesseract"
	Lang        string // default "eng"
	PSM         int    // page segmentation mode, 0 leaves tesseract's default
	TessdataDir string
}

// Tesseract implements the Scanner interface by running the tesseract CLI
type Tesseract struct {
	cfg     TesseractConfig
	runner  Runner
	timeout time.Duration
}

// NewTesseract creates a Tesseract scanner that shells out to the real binary
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	return NewTesseractWithRunner(cfg, execRunner{})
}

// NewTesseractWithRunner creates a Tesseract scanner with a custom Runner for testing
func NewTesseractWithRunner(cfg TesseractConfig, runner Runner) (*Tesseract, error) {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.PSM < 0 || cfg.PSM > 13 {
		return nil, fmt.Errorf("invalid tesseract page segmentation mode: %d", cfg.PSM)
	}
	return &Tesseract{cfg: cfg, runner: runner, timeout: 60 * time.Second}, nil
}

func (t *Tesseract) args(path string) []string {
	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// ScanText runs OCR over a receipt image
func (t *Tesseract) ScanText(imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	pngData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "warranty-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(pngData); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	out, _, err := t.runner.Run(ctx, t.cfg.Binary, t.args(f.Name())...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return Normalize(string(out)), nil
}

// Close is a no-op; every scan runs its own process
func (t *Tesseract) Close() error {
	return nil
}
