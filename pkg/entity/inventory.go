package entity

import "github.com/matzehuels/modelviz/pkg/metadata"

// TypeSummary lists a type with its field and method names.
type TypeSummary struct {
	Name    string   `json:"name"`
	Entity  bool     `json:"entity"`
	Fields  int      `json:"fields"`
	Methods []string `json:"methods"`
}

// Inventory summarizes every type of a module, marking the ones f accepts as
// entities.
func Inventory(m metadata.Module, f Filter) []TypeSummary {
	types := m.Types()
	out := make([]TypeSummary, 0, len(types))
	for _, t := range types {
		s := TypeSummary{
			Name:    t.FullName,
			Entity:  f.Matches(t.FullName),
			Fields:  len(t.Fields),
			Methods: make([]string, 0, len(t.Methods)),
		}
		for _, method := range t.Methods {
			s.Methods = append(s.Methods, method.Name)
		}
		out = append(out, s)
	}
	return out
}
