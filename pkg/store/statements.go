package store

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// statements is the CRUD statement set of one table, derived from its metadata.
type statements struct {
	insert     string
	selectAll  string
	selectByID string
	update     string
	delete     string

	// writable are the columns bound on insert and update, in placeholder order.
	writable []schema.ColumnMetadata
}

func buildStatements(meta *schema.TableMetadata) (statements, error) {
	if meta.PrimaryKey == nil || len(meta.PrimaryKey.Columns) != 1 {
		return statements{}, fmt.Errorf("table %s needs a single-column primary key", meta.Name)
	}
	pk := meta.PrimaryKey.Columns[0]

	var writable []schema.ColumnMetadata
	for _, col := range meta.Columns {
		if meta.IsPrimaryKey(col.Name) && col.AutoIncrement {
			continue
		}
		writable = append(writable, col)
	}
	if len(writable) == 0 {
		return statements{}, fmt.Errorf("table %s has no writable columns", meta.Name)
	}

	returning := strings.Join(meta.ColumnNames(), ", ")

	names := make([]string, len(writable))
	placeholders := make([]string, len(writable))
	assignments := make([]string, len(writable))
	for i, col := range writable {
		names[i] = col.Name
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		assignments[i] = fmt.Sprintf("%s = $%d", col.Name, i+1)
	}

	return statements{
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			meta.Name, strings.Join(names, ", "), strings.Join(placeholders, ", "), returning),
		selectAll: fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
			returning, meta.Name, pk),
		selectByID: fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
			returning, meta.Name, pk),
		update: fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
			meta.Name, strings.Join(assignments, ", "), pk, len(writable)+1, returning),
		delete: fmt.Sprintf("DELETE FROM %s WHERE %s = $1 RETURNING %s",
			meta.Name, pk, returning),
		writable: writable,
	}, nil
}

// qualifiedColumns returns "table.col, ..." for joins.
func qualifiedColumns(meta *schema.TableMetadata) string {
	cols := make([]string, len(meta.Columns))
	for i, col := range meta.Columns {
		cols[i] = meta.Name + "." + col.Name
	}
	return strings.Join(cols, ", ")
}
