package depgraph

import (
	"fmt"

	"github.com/matzehuels/modelviz/pkg/digraph"
	"github.com/matzehuels/modelviz/pkg/entity"
)

// Graph-level metadata keys.
const (
	MetaGraphKind = "graph"
	MetaModule    = "module"
	MetaEntry     = "entry"
)

// Entities builds the entity→member graph of m, in the map's order.
func Entities(m *entity.Map) (*digraph.Graph, error) {
	g := digraph.New(digraph.Metadata{MetaGraphKind: "entities"})
	for _, name := range m.Names() {
		if err := g.AddVertex(digraph.Vertex{ID: name, Kind: digraph.KindEntity}); err != nil {
			return nil, fmt.Errorf("entity %q: %w", name, err)
		}
		members, _ := m.Members(name)
		for _, member := range members {
			v := digraph.Vertex{
				ID:   member.String(),
				Kind: digraph.KindMember,
				Meta: digraph.Metadata{"type": member.Type, "name": member.Name},
			}
			if err := g.AddVertex(v); err != nil {
				return nil, fmt.Errorf("member %q of %q: %w", member, name, err)
			}
			if err := g.AddEdge(digraph.Edge{From: name, To: v.ID}); err != nil {
				return nil, fmt.Errorf("edge %q -> %q: %w", name, v.ID, err)
			}
		}
	}
	return g, nil
}
