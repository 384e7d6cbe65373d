package render

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/render/dot"
)

// Output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatJPG = "jpg"
	FormatPDF = "pdf"
)

// Formats lists every output format accepted by ExecRenderer.
var Formats = []string{FormatPNG, FormatSVG, FormatJPG, FormatPDF}

// Renderer turns a document into an image file.
type Renderer interface {
	Render(ctx context.Context, doc dot.Document, output string) (Result, error)
	Name() string
}

// Result describes a finished render.
type Result struct {
	Output   string        `json:"output"`
	Artifact string        `json:"artifact,omitempty"`
	Format   string        `json:"format"`
	Renderer string        `json:"renderer"`
	Duration time.Duration `json:"duration"`
}

// FormatFor returns the format named by format, or the one implied by the
// output extension when format is empty. It falls back to PNG.
func FormatFor(format, output string) string {
	if format != "" {
		return normalizeFormat(format)
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if ext == "" {
		return FormatPNG
	}
	return normalizeFormat(ext)
}

func normalizeFormat(f string) string {
	f = strings.ToLower(strings.TrimSpace(f))
	if f == "jpeg" {
		return FormatJPG
	}
	return f
}

// ValidateFormat reports an ErrCodeInvalidFormat error for unknown formats.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, normalizeFormat(format)) {
		return mverrors.New(mverrors.ErrCodeInvalidFormat, "unsupported image format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}
