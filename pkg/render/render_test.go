package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/render/dot"
)

const sampleDOT = "digraph G {\n  \"Invoice\" -> \"System.Int32 Id\";\n}\n"

// fakeBinary writes an executable shell script standing in for Graphviz.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-dot")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		format, output, want string
	}{
		{"", "out.svg", "svg"},
		{"", "out.JPEG", "jpg"},
		{"", "out", "png"},
		{"PDF", "out.png", "pdf"},
	}
	for _, tt := range tests {
		if got := FormatFor(tt.format, tt.output); got != tt.want {
			t.Errorf("FormatFor(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"png", "svg", "jpg", "jpeg", "pdf"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) error: %v", f, err)
		}
	}
	if err := ValidateFormat("bmp"); !mverrors.Is(err, mverrors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(bmp) = %v, want INVALID_FORMAT", err)
	}
}

func TestExecRendererSuccess(t *testing.T) {
	// Record the arguments and copy the document to the output.
	bin := fakeBinary(t, `echo "$@" > "$4.args"
cp "$2" "$4"
`)
	dir := t.TempDir()
	out := filepath.Join(dir, "entities.svg")

	r := &ExecRenderer{Binary: bin, ArtifactDir: dir}
	res, err := r.Render(context.Background(), dot.FromText(sampleDOT), out)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Format != "svg" || res.Output != out {
		t.Errorf("Render() = %+v", res)
	}

	data, err := os.ReadFile(out)
	if err != nil || string(data) != sampleDOT {
		t.Errorf("output = %q, %v; want the document", data, err)
	}
	args, _ := os.ReadFile(out + ".args")
	if !strings.HasPrefix(string(args), "-Tsvg ") || !strings.HasSuffix(strings.TrimSpace(string(args)), "-o "+out) {
		t.Errorf("renderer args = %q", args)
	}

	// Generated artifacts are cleaned up.
	matches, _ := filepath.Glob(filepath.Join(dir, "graph-*.dot"))
	if len(matches) != 0 {
		t.Errorf("artifacts left behind: %v", matches)
	}
}

func TestExecRendererArtifactPath(t *testing.T) {
	bin := fakeBinary(t, `cp "$2" "$4"`+"\n")
	dir := t.TempDir()
	artifact := filepath.Join(dir, "keep", "graph.dot")

	r := &ExecRenderer{Binary: bin, ArtifactPath: artifact}
	res, err := r.Render(context.Background(), dot.FromText(sampleDOT), filepath.Join(dir, "out.png"))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Artifact != artifact {
		t.Errorf("Artifact = %q, want %q", res.Artifact, artifact)
	}
	if _, err := os.Stat(artifact); err != nil {
		t.Errorf("caller-supplied artifact removed: %v", err)
	}
}

func TestExecRendererUniqueArtifacts(t *testing.T) {
	r := &ExecRenderer{ArtifactDir: "/tmp/x"}
	a, b := r.Artifact(), r.Artifact()
	if a == b {
		t.Errorf("Artifact() returned the same path twice: %s", a)
	}
	if !strings.HasPrefix(filepath.Base(a), "graph-") || filepath.Ext(a) != ".dot" {
		t.Errorf("Artifact() = %s", a)
	}
}

func TestExecRendererFailure(t *testing.T) {
	bin := fakeBinary(t, `echo "Error: syntax error in line 1" >&2
exit 3
`)
	out := filepath.Join(t.TempDir(), "out.png")

	r := &ExecRenderer{Binary: bin, ArtifactDir: t.TempDir()}
	_, err := r.Render(context.Background(), dot.FromText(sampleDOT), out)
	if !mverrors.Is(err, mverrors.ErrCodeRenderFailure) {
		t.Fatalf("Render() error = %v, want RENDER_FAILURE", err)
	}

	var re *mverrors.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("error does not carry a RenderError: %v", err)
	}
	if re.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", re.ExitCode)
	}
	if re.Stderr != "Error: syntax error in line 1" {
		t.Errorf("Stderr = %q", re.Stderr)
	}
	if re.Output != out || re.Document == "" {
		t.Errorf("RenderError = %+v", re)
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("output should not exist after a failed render")
	}
}

func TestExecRendererMissingBinary(t *testing.T) {
	r := &ExecRenderer{Binary: "modelviz-no-such-renderer", ArtifactDir: t.TempDir()}
	_, err := r.Render(context.Background(), dot.FromText(sampleDOT), filepath.Join(t.TempDir(), "out.png"))
	if !mverrors.Is(err, mverrors.ErrCodeRenderFailure) {
		t.Fatalf("Render() error = %v, want RENDER_FAILURE", err)
	}
	var re *mverrors.RenderError
	if !errors.As(err, &re) || re.ExitCode != -1 {
		t.Errorf("RenderError = %+v, want ExitCode -1", re)
	}
}

func TestExecRendererRejectsInput(t *testing.T) {
	r := &ExecRenderer{Binary: "unused", ArtifactDir: t.TempDir()}
	if _, err := r.Render(context.Background(), dot.FromText(""), "out.png"); !mverrors.Is(err, mverrors.ErrCodeInvalidInput) {
		t.Errorf("empty document error = %v, want INVALID_INPUT", err)
	}
	if _, err := r.Render(context.Background(), dot.FromText(sampleDOT), "out.bmp"); !mverrors.Is(err, mverrors.ErrCodeInvalidFormat) {
		t.Errorf("bmp error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecRendererCancelled(t *testing.T) {
	bin := fakeBinary(t, "sleep 5\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &ExecRenderer{Binary: bin, ArtifactDir: t.TempDir()}
	_, err := r.Render(ctx, dot.FromText(sampleDOT), filepath.Join(t.TempDir(), "out.png"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
}

func TestGraphvizRenderer(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.svg")
	r := &GraphvizRenderer{}
	res, err := r.Render(context.Background(), dot.FromText(sampleDOT), out)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Format != "svg" {
		t.Errorf("Format = %q", res.Format)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") || !strings.Contains(string(data), "Invoice") {
		t.Error("output is not an SVG of the graph")
	}
}

func TestGraphvizRendererUnsupported(t *testing.T) {
	_, err := RenderBytes(context.Background(), dot.FromText(sampleDOT), "pdf")
	if !mverrors.Is(err, mverrors.ErrCodeUnsupported) {
		t.Errorf("RenderBytes(pdf) error = %v, want UNSUPPORTED", err)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.Contains(got, `viewBox="0 0 100.00 50.00"`) || !strings.Contains(got, `width="100"`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("normalizeViewBox() changed svg without viewBox")
	}
}
