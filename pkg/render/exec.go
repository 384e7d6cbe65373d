package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/render/dot"
)

// DefaultBinary is the Graphviz layout program used when none is configured.
const DefaultBinary = "dot"

// ExecRenderer renders by running an external Graphviz binary.
type ExecRenderer struct {
	// Binary is the executable name or path. Defaults to DefaultBinary.
	Binary string
	// Format is the -T argument. Empty means derive it from the output path.
	Format string
	// ArtifactDir holds generated artifacts. Defaults to os.TempDir().
	ArtifactDir string
	// ArtifactPath, when set, is used instead of a generated artifact path.
	ArtifactPath string
	// KeepArtifact leaves generated artifacts on disk. Caller-supplied
	// artifact paths are never removed.
	KeepArtifact bool
	// Logger defaults to a discard logger.
	Logger *log.Logger
}

// Name returns the binary name.
func (r *ExecRenderer) Name() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

// Artifact returns the path the document will be written to: ArtifactPath
// when set, otherwise a fresh graph-<uuid>.dot path inside ArtifactDir.
func (r *ExecRenderer) Artifact() string {
	if r.ArtifactPath != "" {
		return r.ArtifactPath
	}
	dir := r.ArtifactDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "graph-"+uuid.NewString()+".dot")
}

// Render writes doc to an artifact file and runs the binary on it, blocking
// until the process exits.
func (r *ExecRenderer) Render(ctx context.Context, doc dot.Document, output string) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	start := time.Now()

	format := FormatFor(r.Format, output)
	if err := ValidateFormat(format); err != nil {
		return Result{}, err
	}
	if doc.Empty() {
		return Result{}, mverrors.New(mverrors.ErrCodeInvalidInput, "empty DOT document")
	}

	artifact := r.Artifact()
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		return Result{}, mverrors.Wrap(mverrors.ErrCodeInvalidPath, err, "create artifact directory")
	}
	if err := os.WriteFile(artifact, doc.Bytes(), 0o644); err != nil {
		return Result{}, mverrors.Wrap(mverrors.ErrCodeInvalidPath, err, "write artifact %s", artifact)
	}
	if r.ArtifactPath == "" && !r.KeepArtifact {
		defer os.Remove(artifact)
	}

	renderErr := &mverrors.RenderError{
		Binary:   r.Name(),
		Document: artifact,
		Output:   output,
		ExitCode: -1,
	}

	bin, err := exec.LookPath(r.Name())
	if err != nil {
		renderErr.Stderr = fmt.Sprintf("%s not found. Install Graphviz:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz", r.Name())
		return Result{}, mverrors.Wrap(mverrors.ErrCodeRenderFailure, renderErr, "renderer unavailable")
	}

	args := []string{"-T" + format, artifact, "-o", output}
	logger.Debug("running renderer", "binary", bin, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, bin, args...)
	var errBuf bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			renderErr.ExitCode = exitErr.ExitCode()
		}
		renderErr.Stderr = strings.TrimSpace(errBuf.String())
		return Result{}, mverrors.Wrap(mverrors.ErrCodeRenderFailure, renderErr, "render %s", output)
	}

	res := Result{
		Output:   output,
		Format:   format,
		Renderer: r.Name(),
		Duration: time.Since(start),
	}
	if r.ArtifactPath != "" || r.KeepArtifact {
		res.Artifact = artifact
	}
	return res, nil
}

// Ensure ExecRenderer implements Renderer.
var _ Renderer = (*ExecRenderer)(nil)
