// Package admin exposes every persisted entity through an administrative
// console. The set of entities is derived from the schema declarations when
// the process starts, so a table cannot be declared without being registered.
package admin

import (
	"fmt"
	"sort"

	"pharmacy-store/internal/models"
	"pharmacy-store/internal/schema"
)

// Entry is one registered entity.
type Entry struct {
	Name  string
	Table *schema.Table
}

// Registry maps entity names to their tables.
type Registry struct {
	byName  map[string]Entry
	byTable map[string]Entry
}

// NewRegistry registers every table under its entity name. Declaring two
// tables under one name is an error.
func NewRegistry(tables []*schema.Table) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]Entry, len(tables)),
		byTable: make(map[string]Entry, len(tables)),
	}
	for _, t := range tables {
		if t.Entity == "" {
			return nil, fmt.Errorf("table %s has no entity name", t.Name)
		}
		if _, dup := r.byName[t.Entity]; dup {
			return nil, fmt.Errorf("entity %s registered twice", t.Entity)
		}
		e := Entry{Name: t.Entity, Table: t}
		r.byName[t.Entity] = e
		r.byTable[t.Name] = e
	}
	return r, nil
}

// DefaultRegistry registers all declared tables.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(schema.Tables())
	if err != nil {
		panic(err)
	}
	return r
}

// Get looks an entry up by entity name, falling back to the table name.
func (r *Registry) Get(name string) (Entry, bool) {
	if e, ok := r.byName[name]; ok {
		return e, true
	}
	e, ok := r.byTable[name]
	return e, ok
}

// All returns the registered entries sorted by entity name.
func (r *Registry) All() []Entry {
	out := make([]Entry, 0, len(r.byName))
	for _, e := range r.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ColumnInfo describes a column for console clients.
type ColumnInfo struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Nullable   bool     `json:"nullable"`
	PrimaryKey bool     `json:"primary_key,omitempty"`
	References string   `json:"references,omitempty"`
	Choices    []string `json:"choices,omitempty"`
}

// EntityInfo describes a registered entity for console clients.
type EntityInfo struct {
	Name    string       `json:"name"`
	Table   string       `json:"table"`
	Columns []ColumnInfo `json:"columns"`
}

// Describe renders e for the entity listing.
func (e Entry) Describe() EntityInfo {
	info := EntityInfo{Name: e.Name, Table: e.Table.Name}
	enums := models.EnumValues()
	for _, c := range e.Table.Columns {
		ci := ColumnInfo{
			Name:       c.Name,
			Type:       c.Kind.String(),
			Nullable:   c.Nullable,
			PrimaryKey: c.Name == e.Table.PrimaryKey,
			Choices:    enums[c.Enum],
		}
		if c.Ref != nil {
			ci.References = c.Ref.Table + "." + c.Ref.Column
		}
		info.Columns = append(info.Columns, ci)
	}
	return info
}
