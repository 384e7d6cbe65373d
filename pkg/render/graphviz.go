package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"

	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	"github.com/matzehuels/modelviz/pkg/render/dot"
)

var graphvizFormats = map[string]graphviz.Format{
	FormatSVG: graphviz.SVG,
	FormatPNG: graphviz.PNG,
	FormatJPG: graphviz.JPG,
}

// GraphvizRenderer lays out documents in process.
type GraphvizRenderer struct {
	// Format defaults to the output extension.
	Format string
}

// Name returns "graphviz".
func (r *GraphvizRenderer) Name() string { return "graphviz" }

// Render lays doc out and writes the image to output.
func (r *GraphvizRenderer) Render(ctx context.Context, doc dot.Document, output string) (Result, error) {
	start := time.Now()
	format := FormatFor(r.Format, output)
	data, err := RenderBytes(ctx, doc, format)
	if err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return Result{}, mverrors.Wrap(mverrors.ErrCodeInvalidPath, err, "write %s", output)
	}
	return Result{
		Output:   output,
		Format:   format,
		Renderer: r.Name(),
		Duration: time.Since(start),
	}, nil
}

// RenderBytes lays doc out in process and returns the encoded image.
func RenderBytes(ctx context.Context, doc dot.Document, format string) ([]byte, error) {
	gvFormat, ok := graphvizFormats[normalizeFormat(format)]
	if !ok {
		return nil, mverrors.New(mverrors.ErrCodeUnsupported, "in-process rendering does not support %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, mverrors.Wrap(mverrors.ErrCodeRenderFailure, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(doc.Bytes())
	if err != nil {
		return nil, mverrors.Wrap(mverrors.ErrCodeRenderFailure, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, mverrors.Wrap(mverrors.ErrCodeRenderFailure, err, "render")
	}
	if gvFormat == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg element so the image scales from a
// zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Ensure GraphvizRenderer implements Renderer.
var _ Renderer = (*GraphvizRenderer)(nil)
