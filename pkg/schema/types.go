package schema

import (
	"reflect"
	"time"
)

// TableMetadata describes a table derived from a tagged struct.
type TableMetadata struct {
	Name        string
	GoType      reflect.Type
	Columns     []ColumnMetadata
	PrimaryKey  *PrimaryKeyMetadata
	ForeignKeys []ForeignKeyMetadata
	Constraints []ConstraintMetadata
}

// ColumnMetadata maps one struct field to one column.
type ColumnMetadata struct {
	Name          string
	GoField       string
	GoIndex       []int
	GoType        reflect.Type
	SQLType       string
	Nullable      bool
	Default       *string
	Unique        bool
	AutoIncrement bool
	// Enum lists the allowed values when the column carries an enum(...) option.
	Enum     []string
	Position int
}

// PrimaryKeyMetadata names the primary key columns.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ReferenceAction is a foreign key ON DELETE / ON UPDATE action.
type ReferenceAction string

const (
	NoAction   ReferenceAction = "NO ACTION"
	Cascade    ReferenceAction = "CASCADE"
	Restrict   ReferenceAction = "RESTRICT"
	SetNull    ReferenceAction = "SET NULL"
	SetDefault ReferenceAction = "SET DEFAULT"
)

// ForeignKeyMetadata describes a foreign key constraint.
type ForeignKeyMetadata struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// ConstraintType distinguishes table-level constraints.
type ConstraintType string

const (
	CheckConstraint  ConstraintType = "CHECK"
	UniqueConstraint ConstraintType = "UNIQUE"
)

// ConstraintMetadata describes a CHECK or multi-column UNIQUE constraint.
type ConstraintMetadata struct {
	Name       string
	Type       ConstraintType
	Columns    []string
	Expression string
}

// Column returns the column with the given name.
func (t *TableMetadata) Column(name string) (*ColumnMetadata, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in declaration order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// IsPrimaryKey reports whether column is part of the primary key.
func (t *TableMetadata) IsPrimaryKey(column string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, pk := range t.PrimaryKey.Columns {
		if pk == column {
			return true
		}
	}
	return false
}

// References returns the distinct tables this table points at, in
// declaration order, excluding self references.
func (t *TableMetadata) References() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, fk := range t.ForeignKeys {
		if fk.ReferencedTable == t.Name || seen[fk.ReferencedTable] {
			continue
		}
		seen[fk.ReferencedTable] = true
		refs = append(refs, fk.ReferencedTable)
	}
	return refs
}

// goTypeToPostgreSQL maps a Go type to a PostgreSQL type for untyped tags.
func goTypeToPostgreSQL(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == reflect.TypeOf(time.Time{}) {
		return "timestamp with time zone"
	}

	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int16:
		return "smallint"
	case reflect.Int32, reflect.Int:
		return "integer"
	case reflect.Int64:
		return "bigint"
	case reflect.Float32:
		return "real"
	case reflect.Float64:
		return "double precision"
	case reflect.String:
		return "text"
	}

	return ""
}
