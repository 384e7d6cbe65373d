// Package render turns DOT documents into images.
//
// # Renderers
//
// [ExecRenderer] is the default. It writes the document to an artifact file
// and runs an external Graphviz layout binary on it:
//
//	<binary> -T<format> <artifact> -o <output>
//
// The artifact path is either supplied by the caller or generated per run
// (graph-<uuid>.dot inside ArtifactDir), so concurrent runs never share a
// file. Rendering blocks until the process exits and honours context
// cancellation. A missing binary or a non-zero exit status is reported as an
// ErrCodeRenderFailure error whose cause is an [errors.RenderError] carrying
// the exit code and captured stderr.
//
// [GraphvizRenderer] lays the document out in process with
// github.com/goccy/go-graphviz, for hosts without a Graphviz installation. It
// supports SVG, PNG and JPG.
//
// Both implement [Renderer]:
//
//	r := &render.ExecRenderer{Format: "svg"}
//	res, err := r.Render(ctx, dot.FromGraph(g, dot.Options{}), "entities.svg")
//
// [errors.RenderError]: github.com/matzehuels/modelviz/pkg/errors.RenderError
package render
