package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	sqlann "entgo.io/ent/dialect/entsql"
	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"github.com/jmoiron/sqlx"

	"github.com/abhisek/lingo/ent/schema"
)

// managedSchemas lists the ent schemas whose tables the store creates.
var managedSchemas = []ent.Interface{
	schema.Progress{},
	schema.ReviewEvent{},
}

// migrate creates or upgrades every managed table through ent's migration
// engine. The ent schemas are the source of truth for columns and indexes.
func migrate(ctx context.Context, db *sqlx.DB, d string) error {
	tables := make([]*entschema.Table, 0, len(managedSchemas))
	for _, s := range managedSchemas {
		t, err := buildTable(s)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}

	m, err := entschema.NewMigrate(entsql.OpenDB(d, db.DB), entschema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("init migration: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// buildTable flattens a schema and its mixins into a migration table with an
// auto-increment id primary key.
func buildTable(s ent.Interface) (*entschema.Table, error) {
	name := tableName(s)
	if name == "" {
		return nil, fmt.Errorf("schema %T has no table annotation", s)
	}
	t := entschema.NewTable(name)
	t.AddPrimary(&entschema.Column{Name: "id", Type: field.TypeInt64, Increment: true})

	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	for _, f := range fields {
		fd := f.Descriptor()
		if fd.Err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", name, fd.Name, fd.Err)
		}
		if fd.Info == nil {
			return nil, fmt.Errorf("field %s.%s: missing type info", name, fd.Name)
		}
		t.AddColumn(&entschema.Column{
			Name:     fd.Name,
			Type:     fd.Info.Type,
			Unique:   fd.Unique,
			Nullable: fd.Optional,
			Default:  literalDefault(fd.Default),
			Comment:  fd.Comment,
		})
	}

	for _, idx := range indexes {
		id := idx.Descriptor()
		for _, col := range id.Fields {
			if !t.HasColumn(col) {
				return nil, fmt.Errorf("index on %s: unknown column %q", name, col)
			}
		}
		t.AddIndex(name+"_"+strings.Join(id.Fields, "_"), id.Unique, id.Fields)
	}
	return t, nil
}

// literalDefault keeps scalar defaults as column defaults. Function defaults
// such as time.Now are applied by the repositories.
func literalDefault(v any) any {
	switch v.(type) {
	case bool, int, int64, float64, string:
		return v
	default:
		return nil
	}
}

func tableName(s ent.Interface) string {
	for _, a := range s.Annotations() {
		switch ann := a.(type) {
		case sqlann.Annotation:
			return ann.Table
		case *sqlann.Annotation:
			return ann.Table
		}
	}
	return ""
}
