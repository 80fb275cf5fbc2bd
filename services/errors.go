package services

import "errors"

var (
	ErrUnreadable         = errors.New("raster cannot be opened")
	ErrNoTimestamp        = errors.New("no date-time token in pathname")
	ErrTranslate          = errors.New("cog translation failed")
	ErrInvalidDestination = errors.New("invalid output location")
	ErrOutsideTempDir     = errors.New("artifact is not under the temp directory")
)
