package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// commandRunner runs name with args and returns whatever the command wrote
// to stderr.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// GDALService drives the GDAL command line utilities.
type GDALService struct {
	infoBin      string
	translateBin string
	run          commandRunner
}

func NewGDALService(infoBin, translateBin string) *GDALService {
	return &GDALService{
		infoBin:      infoBin,
		translateBin: translateBin,
		run:          execRunner,
	}
}

// Open checks that GDAL can open path read-only.
func (g *GDALService) Open(ctx context.Context, path string) error {
	stderr, err := g.run(ctx, g.infoBin, "-nomd", "-norat", "-noct", path)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrUnreadable, path, commandError(err, stderr))
	}
	return nil
}

// Translate writes src to dst as a Cloud-Optimized GeoTIFF.
func (g *GDALService) Translate(ctx context.Context, src, dst string, creationOptions []string) error {
	args := []string{"-q", "-of", "COG"}
	for _, opt := range creationOptions {
		args = append(args, "-co", opt)
	}
	args = append(args, src, dst)

	stderr, err := g.run(ctx, g.translateBin, args...)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrTranslate, src, commandError(err, stderr))
	}

	// gdal_translate can exit 0 without a dataset on some driver errors
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("%w: %s produced no output: %v", ErrTranslate, src, err)
	}
	return nil
}

func commandError(err error, stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return err.Error()
	}
	return fmt.Sprintf("%v: %s", err, msg)
}
