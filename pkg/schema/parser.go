package schema

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	// StructTagKey is the key used in struct tags (e.g., `po:"..."`).
	StructTagKey = "po"
)

// Tabler lets a model choose its table name instead of the snake_case default.
type Tabler interface {
	TableName() string
}

// Parser parses struct definitions to extract table metadata.
//
// Tag format: "column_name,option1,option2(value),option3". Supported options:
//
//	primaryKey, serial, notNull, unique, default(expr)
//	varchar(n), integer, bigint, text, timestamptz, double precision, ...
//	check(expr)           table CHECK constraint on the column
//	enum(a|b|c)           CHECK (column IN ('a', 'b', 'c'))
//	fk(table.column)      foreign key, with optional onDelete(...) / onUpdate(...)
type Parser struct{}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts TableMetadata from a model value or type.
func (p *Parser) Parse(model any) (*TableMetadata, error) {
	modelType, ok := model.(reflect.Type)
	if !ok {
		modelType = reflect.TypeOf(model)
	}
	if modelType == nil {
		return nil, fmt.Errorf("model must be a struct, got nil")
	}
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}

	table := &TableMetadata{
		Name:        tableName(modelType),
		GoType:      modelType,
		Columns:     make([]ColumnMetadata, 0, modelType.NumField()),
		ForeignKeys: make([]ForeignKeyMetadata, 0),
		Constraints: make([]ConstraintMetadata, 0),
	}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.IsExported() {
			continue
		}

		tagValue := field.Tag.Get(StructTagKey)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		opts, err := parseTag(tagValue)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tag for field %s: %w", field.Name, err)
		}

		column := createColumnMetadata(field, opts, i)

		if opts.Has("primaryKey") {
			if table.PrimaryKey == nil {
				table.PrimaryKey = &PrimaryKeyMetadata{
					Columns: []string{column.Name},
					Name:    table.Name + "_pkey",
				}
			} else {
				table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, column.Name)
			}
		}

		if expr := opts.Get("check"); expr != "" {
			table.Constraints = append(table.Constraints, ConstraintMetadata{
				Name:       fmt.Sprintf("%s_%s_check", table.Name, column.Name),
				Type:       CheckConstraint,
				Columns:    []string{column.Name},
				Expression: "(" + expr + ")",
			})
		}

		if len(column.Enum) > 0 {
			quoted := make([]string, len(column.Enum))
			for j, v := range column.Enum {
				quoted[j] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
			}
			table.Constraints = append(table.Constraints, ConstraintMetadata{
				Name:       fmt.Sprintf("%s_%s_check", table.Name, column.Name),
				Type:       CheckConstraint,
				Columns:    []string{column.Name},
				Expression: fmt.Sprintf("(%s IN (%s))", column.Name, strings.Join(quoted, ", ")),
			})
		}

		if ref := opts.Get("fk"); ref != "" {
			fk, err := parseForeignKey(table.Name, column.Name, ref, opts)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}

		table.Columns = append(table.Columns, column)
	}

	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("model %s has no %q tagged fields", modelType.Name(), StructTagKey)
	}

	return table, nil
}

// tableName resolves the table name: Tabler first, snake_case fallback.
func tableName(modelType reflect.Type) string {
	if t, ok := reflect.New(modelType).Elem().Interface().(Tabler); ok {
		return t.TableName()
	}
	if t, ok := reflect.New(modelType).Interface().(Tabler); ok {
		return t.TableName()
	}
	return toSnakeCase(modelType.Name())
}

// createColumnMetadata creates a ColumnMetadata from a struct field.
func createColumnMetadata(field reflect.StructField, opts *TagOptions, position int) ColumnMetadata {
	column := ColumnMetadata{
		Name:     opts.Name,
		GoField:  field.Name,
		GoIndex:  field.Index,
		GoType:   field.Type,
		Position: position,
	}

	if sqlType := opts.GetSQLType(); sqlType != "" {
		column.SQLType = sqlType
	} else {
		column.SQLType = goTypeToPostgreSQL(field.Type)
	}

	column.Nullable = !opts.Has("notNull") && !opts.Has("primaryKey")
	if field.Type.Kind() == reflect.Ptr {
		column.Nullable = true
	}

	if defaultVal := opts.Get("default"); defaultVal != "" {
		column.Default = &defaultVal
	}
	column.Unique = opts.Has("unique")
	column.AutoIncrement = opts.Has("serial") || opts.Has("autoIncrement")

	if values := opts.Get("enum"); values != "" {
		for _, v := range strings.Split(values, "|") {
			column.Enum = append(column.Enum, strings.TrimSpace(v))
		}
	}

	return column
}

// parseForeignKey reads "table.column" or "table(column)".
func parseForeignKey(table, column, ref string, opts *TagOptions) (ForeignKeyMetadata, error) {
	var refTable, refColumn string

	if strings.Contains(ref, ".") {
		parts := strings.SplitN(ref, ".", 2)
		refTable, refColumn = parts[0], parts[1]
	} else if idx := strings.Index(ref, "("); idx > 0 && strings.HasSuffix(ref, ")") {
		refTable = ref[:idx]
		refColumn = ref[idx+1 : len(ref)-1]
	}

	if refTable == "" || refColumn == "" {
		return ForeignKeyMetadata{}, fmt.Errorf("invalid foreign key reference %q", ref)
	}

	return ForeignKeyMetadata{
		Name:              fmt.Sprintf("fk_%s_%s_%s", table, column, refTable),
		Columns:           []string{column},
		ReferencedTable:   refTable,
		ReferencedColumns: []string{refColumn},
		OnDelete:          parseReferenceAction(opts.Get("onDelete")),
		OnUpdate:          parseReferenceAction(opts.Get("onUpdate")),
	}, nil
}

// TagOptions represents parsed tag options.
type TagOptions struct {
	Name    string            // Column name (first element)
	Options map[string]string // Other options
}

// parseTag parses a struct tag value into TagOptions.
func parseTag(tag string) (*TagOptions, error) {
	parts := splitTag(tag)
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("empty tag value")
	}
	opts := &TagOptions{
		Name:    parts[0],
		Options: make(map[string]string),
	}
	for _, opt := range parts[1:] {
		if idx := strings.Index(opt, "("); idx != -1 {
			if !strings.HasSuffix(opt, ")") {
				return nil, fmt.Errorf("invalid option format: %s", opt)
			}
			opts.Options[opt[:idx]] = opt[idx+1 : len(opt)-1]
		} else if idx := strings.Index(opt, ":"); idx != -1 {
			opts.Options[opt[:idx]] = opt[idx+1:]
		} else {
			opts.Options[opt] = ""
		}
	}
	return opts, nil
}

// Has checks if an option exists.
func (t *TagOptions) Has(key string) bool {
	_, ok := t.Options[key]
	return ok
}

// Get returns the value of an option.
func (t *TagOptions) Get(key string) string {
	return t.Options[key]
}

// GetSQLType returns the SQL type from tag options.
func (t *TagOptions) GetSQLType() string {
	pgTypes := []string{
		"serial", "bigserial",
		"varchar", "text", "char",
		"smallint", "integer", "bigint",
		"numeric", "decimal", "real", "double precision",
		"boolean",
		"date", "timestamp", "timestamptz",
		"uuid",
	}
	for _, pgType := range pgTypes {
		if t.Has(pgType) {
			if value := t.Get(pgType); value != "" {
				return fmt.Sprintf("%s(%s)", pgType, value)
			}
			return pgType
		}
	}
	return ""
}

// splitTag splits a tag value by commas, handling nested parentheses and
// single-quoted literals.
func splitTag(tag string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	quoted := false
	for _, ch := range tag {
		switch {
		case ch == '\'':
			quoted = !quoted
			current.WriteRune(ch)
		case quoted:
			current.WriteRune(ch)
		case ch == '(':
			depth++
			current.WriteRune(ch)
		case ch == ')':
			depth--
			current.WriteRune(ch)
		case ch == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// toSnakeCase converts a string from PascalCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && ch >= 'A' && ch <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(ch)
	}
	return strings.ToLower(result.String())
}

// parseReferenceAction converts a string to ReferenceAction.
func parseReferenceAction(action string) ReferenceAction {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "CASCADE":
		return Cascade
	case "RESTRICT":
		return Restrict
	case "SETNULL", "SET NULL":
		return SetNull
	case "SETDEFAULT", "SET DEFAULT":
		return SetDefault
	default:
		return NoAction
	}
}
