package migration

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// Planner renders DDL from table metadata. Identifiers are emitted bare; the
// shop schema uses lower-case names that need no quoting.
type Planner struct{}

// NewPlanner creates a planner that emits plain CREATE TABLE statements.
func NewPlanner() *Planner {
	return &Planner{}
}

// ResetStatements returns the statements that drop every table, dependants
// first, and recreate them, dependencies first. tables must already be in
// dependency order.
func (p *Planner) ResetStatements(tables []*schema.TableMetadata) []string {
	statements := make([]string, 0, 2*len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		statements = append(statements, p.DropTable(tables[i].Name))
	}
	for _, table := range tables {
		statements = append(statements, p.CreateTable(table))
	}
	return statements
}

// CreateTable generates a CREATE TABLE statement.
func (p *Planner) CreateTable(table *schema.TableMetadata) string {
	var parts []string

	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		colDef := p.columnDefinition(col)
		if singlePKColumn != "" && col.Name == singlePKColumn {
			colDef += " PRIMARY KEY"
		}
		parts = append(parts, "    "+colDef)
	}

	// Composite keys only; single-column keys are inline.
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		pkCols := strings.Join(table.PrimaryKey.Columns, ", ")
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)", table.PrimaryKey.Name, pkCols))
	}

	for _, fk := range table.ForeignKeys {
		parts = append(parts, "    "+p.foreignKeyDefinition(fk))
	}

	for _, constraint := range table.Constraints {
		switch constraint.Type {
		case schema.CheckConstraint:
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s CHECK %s", constraint.Name, constraint.Expression))
		case schema.UniqueConstraint:
			cols := strings.Join(constraint.Columns, ", ")
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s UNIQUE (%s)", constraint.Name, cols))
		}
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", table.Name, strings.Join(parts, ",\n"))
}

// DropTable generates a DROP TABLE statement.
func (p *Planner) DropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", tableName)
}

func (p *Planner) columnDefinition(col schema.ColumnMetadata) string {
	parts := []string{col.Name, col.SQLType}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}
	if col.Unique {
		parts = append(parts, "UNIQUE")
	}

	return strings.Join(parts, " ")
}

func (p *Planner) foreignKeyDefinition(fk schema.ForeignKeyMetadata) string {
	localCols := strings.Join(fk.Columns, ", ")
	refCols := strings.Join(fk.ReferencedColumns, ", ")

	parts := []string{
		fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s)", fk.Name, localCols),
		fmt.Sprintf("REFERENCES %s (%s)", fk.ReferencedTable, refCols),
	}
	if fk.OnDelete != schema.NoAction && fk.OnDelete != "" {
		parts = append(parts, "ON DELETE "+string(fk.OnDelete))
	}
	if fk.OnUpdate != schema.NoAction && fk.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+string(fk.OnUpdate))
	}

	return strings.Join(parts, " ")
}
