package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Raster is the subset of GDAL the converter needs.
type Raster interface {
	Open(ctx context.Context, path string) error
	Translate(ctx context.Context, src, dst string, creationOptions []string) error
}

// Converter turns a source raster into a COG under <tmpPath>/<timestamp>/.
type Converter struct {
	raster          Raster
	tmpPath         string
	creationOptions []string
}

func NewConverter(raster Raster, tmpPath string, creationOptions []string) *Converter {
	return &Converter{
		raster:          raster,
		tmpPath:         tmpPath,
		creationOptions: append([]string(nil), creationOptions...),
	}
}

// Convert returns the path of the temporary COG. Nothing is written when
// the source cannot be opened or carries no timestamp token.
func (c *Converter) Convert(ctx context.Context, source string) (string, error) {
	if err := c.raster.Open(ctx, source); err != nil {
		return "", err
	}

	timestamp := ExtractTimestamp(source)
	if timestamp == "" {
		return "", fmt.Errorf("%w: %s", ErrNoTimestamp, source)
	}

	outDir := filepath.Join(c.tmpPath, timestamp)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	outPath := filepath.Join(outDir, filepath.Base(source))
	if err := c.raster.Translate(ctx, source, outPath, c.creationOptions); err != nil {
		os.RemoveAll(outDir)
		return "", err
	}

	return outPath, nil
}
