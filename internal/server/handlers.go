package server

import (
	"net/http"

	"github.com/matzehuels/modelviz/pkg/digraph"
	"github.com/matzehuels/modelviz/pkg/entity"
	mverrors "github.com/matzehuels/modelviz/pkg/errors"
	pkgio "github.com/matzehuels/modelviz/pkg/io"
	"github.com/matzehuels/modelviz/pkg/pipeline"
	"github.com/matzehuels/modelviz/pkg/render"
	"github.com/matzehuels/modelviz/pkg/render/dot"
	"github.com/matzehuels/modelviz/pkg/schema"
)

// Graph kinds and formats accepted by /v1/graph.
const (
	KindEntities = "entities"
	KindCalls    = "calls"

	FormatJSON = "json"
	FormatDOT  = "dot"
)

var contentTypes = map[string]string{
	render.FormatSVG: "image/svg+xml",
	render.FormatPNG: "image/png",
	render.FormatJPG: "image/jpeg",
}

type entityBody struct {
	Name    string          `json:"name"`
	Members []entity.Member `json:"members"`
}

type tableBody struct {
	Name    string       `json:"name"`
	Columns []columnBody `json:"columns"`
}

type columnBody struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Kind       string `json:"kind"`
	SQLType    string `json:"sql_type,omitempty"`
	Unresolved string `json:"unresolved,omitempty"`
}

type entitiesResponse struct {
	Module     string             `json:"module"`
	Entities   []entityBody       `json:"entities"`
	Tables     []tableBody        `json:"tables"`
	Collisions []entity.Collision `json:"collisions,omitempty"`
	Opaque     int                `json:"opaque"`
	Cached     bool               `json:"cached"`
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Entities(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	body := entitiesResponse{
		Module:     r.URL.Query().Get("module"),
		Entities:   []entityBody{},
		Tables:     tablesBody(res.DataSet),
		Collisions: res.Collisions,
		Opaque:     res.Stats.Opaque,
		Cached:     res.CacheHit,
	}
	for _, name := range res.Entities.Names() {
		members, _ := res.Entities.Members(name)
		body.Entities = append(body.Entities, entityBody{Name: name, Members: members})
	}
	writeJSON(w, http.StatusOK, body)
}

func tablesBody(ds *schema.DataSet) []tableBody {
	out := make([]tableBody, 0, len(ds.Tables))
	for _, t := range ds.Tables {
		tb := tableBody{Name: t.Name, Columns: make([]columnBody, 0, len(t.Columns))}
		for _, c := range t.Columns {
			tb.Columns = append(tb.Columns, columnBody{
				Name:       c.Name,
				Label:      c.Label,
				Kind:       c.Kind.String(),
				SQLType:    c.Kind.SQLType(),
				Unresolved: c.Unresolved,
			})
		}
		out = append(out, tb)
	}
	return out
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	kind := q.Get("kind")
	if kind == "" {
		kind = KindEntities
	}
	format := q.Get("format")
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatDOT {
		if _, ok := contentTypes[format]; !ok {
			writeError(w, mverrors.New(mverrors.ErrCodeInvalidFormat, "unsupported format %q", format))
			return
		}
	}

	var g *digraph.Graph
	switch kind {
	case KindEntities:
		res, err := s.runner.Entities(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		g = res.Graph
	case KindCalls:
		opts.Entry = q.Get("entry")
		res, err := s.runner.Calls(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		g = res.Graph
	default:
		writeError(w, mverrors.New(mverrors.ErrCodeInvalidInput, "kind must be %s or %s", KindEntities, KindCalls))
		return
	}

	s.writeGraph(w, r, g, format, opts)
}

func (s *Server) writeGraph(w http.ResponseWriter, r *http.Request, g *digraph.Graph, format string, opts pipeline.Options) {
	if format == FormatJSON {
		data, err := pkgio.MarshalJSON(g)
		if err != nil {
			writeError(w, mverrors.Wrap(mverrors.ErrCodeInternal, err, "encode graph"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}

	rankDir := opts.RankDir
	if rankDir == "" {
		rankDir = pipeline.DefaultRankDir
	}
	doc := dot.FromGraph(g, dot.Options{Detailed: opts.Detailed, RankDir: rankDir})
	if format == FormatDOT {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write(doc.Bytes())
		return
	}

	data, err := render.RenderBytes(r.Context(), doc, format)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(data)
}
