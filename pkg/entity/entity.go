package entity

import (
	"github.com/matzehuels/modelviz/pkg/metadata"
)

// Member is one field of an entity, with normalized type and name.
type Member struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// String returns "<Type> <Name>", the member's identity in graphs.
func (m Member) String() string {
	return m.Type + " " + m.Name
}

// Collision records a type that replaced an earlier entity with the same
// simple name.
type Collision struct {
	Name     string `json:"name"`
	Replaced string `json:"replaced"`
	By       string `json:"by"`
}

// Map maps entity simple names to their members. Iteration order is the order
// in which names first appeared.
type Map struct {
	names      []string
	members    map[string][]Member
	sources    map[string]string
	collisions []Collision
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{
		members: make(map[string][]Member),
		sources: make(map[string]string),
	}
}

// Set stores members under name, replacing any previous value but keeping
// the name's original position.
func (m *Map) Set(name string, members []Member) {
	if _, ok := m.members[name]; !ok {
		m.names = append(m.names, name)
	}
	m.members[name] = members
}

// Members returns the members of the named entity.
func (m *Map) Members(name string) ([]Member, bool) {
	members, ok := m.members[name]
	return members, ok
}

// Names returns the entity names in first-appearance order.
func (m *Map) Names() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of entities.
func (m *Map) Len() int { return len(m.names) }

// MemberCount returns the total number of members across all entities.
func (m *Map) MemberCount() int {
	n := 0
	for _, members := range m.members {
		n += len(members)
	}
	return n
}

// Collisions returns the simple-name collisions seen while extracting.
func (m *Map) Collisions() []Collision {
	return append([]Collision(nil), m.collisions...)
}

// Extract builds the entity map of every type accepted by f.
func Extract(types []*metadata.Type, f Filter) *Map {
	out := NewMap()
	for _, t := range types {
		if t == nil || !f.Matches(t.FullName) {
			continue
		}

		members := make([]Member, 0, len(t.Fields))
		for _, field := range t.Fields {
			members = append(members, Member{
				Type: Normalize(field.TypeName),
				Name: Normalize(field.Name),
			})
		}

		name := SimpleName(t.FullName)
		if prev, ok := out.sources[name]; ok {
			out.collisions = append(out.collisions, Collision{Name: name, Replaced: prev, By: t.FullName})
		}
		out.sources[name] = t.FullName
		out.Set(name, members)
	}
	return out
}
