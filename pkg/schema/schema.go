package schema

import (
	"fmt"

	"github.com/matzehuels/modelviz/pkg/entity"
)

// Column is one member of an entity.
type Column struct {
	// Name is the member name.
	Name string `json:"name"`
	// Label is the display name: Name for resolved columns, and
	// "<Name> (<simple type name>)" for opaque ones.
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
	// Unresolved holds the original type name of an opaque column.
	Unresolved string `json:"unresolved,omitempty"`
}

// Opaque reports whether the column's type did not resolve.
func (c Column) Opaque() bool { return c.Unresolved != "" || c.Kind == KindOpaque }

// Table is the projection of one entity.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// DataSet is an ordered collection of tables.
type DataSet struct {
	Tables []*Table `json:"tables"`
}

// Table returns the table with the given name.
func (d *DataSet) Table(name string) (*Table, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// OpaqueCount returns the number of opaque columns across all tables.
func (d *DataSet) OpaqueCount() int {
	n := 0
	for _, t := range d.Tables {
		for _, c := range t.Columns {
			if c.Opaque() {
				n++
			}
		}
	}
	return n
}

// Project builds one table per entity, in the map's order.
func Project(m *entity.Map) *DataSet {
	ds := &DataSet{Tables: make([]*Table, 0, m.Len())}
	for _, name := range m.Names() {
		members, _ := m.Members(name)
		t := &Table{Name: name, Columns: make([]Column, 0, len(members))}
		for _, member := range members {
			t.Columns = append(t.Columns, column(member))
		}
		ds.Tables = append(ds.Tables, t)
	}
	return ds
}

func column(m entity.Member) Column {
	if k, ok := Resolve(m.Type); ok {
		return Column{Name: m.Name, Label: m.Name, Kind: k}
	}
	return Column{
		Name:       m.Name,
		Label:      fmt.Sprintf("%s (%s)", m.Name, entity.SimpleName(m.Type)),
		Kind:       KindOpaque,
		Unresolved: m.Type,
	}
}
