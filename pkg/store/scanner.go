package store

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"

	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// rowTo returns a pgx row mapper that fills T by matching result column names
// against the metadata. Columns unknown to the metadata are discarded.
func rowTo[T any](meta *schema.TableMetadata) pgx.RowToFunc[T] {
	return func(row pgx.CollectableRow) (T, error) {
		var rec T
		dest := reflect.ValueOf(&rec).Elem()

		fieldDescriptions := row.FieldDescriptions()
		scanTargets := make([]any, len(fieldDescriptions))
		for i, fd := range fieldDescriptions {
			col, ok := meta.Column(fd.Name)
			if !ok {
				var dummy any
				scanTargets[i] = &dummy
				continue
			}
			scanTargets[i] = dest.FieldByIndex(col.GoIndex).Addr().Interface()
		}

		if err := row.Scan(scanTargets...); err != nil {
			return rec, fmt.Errorf("failed to scan %s row: %w", meta.Name, err)
		}
		return rec, nil
	}
}

// valuesOf returns the field values of rec for cols, in order.
func valuesOf[T any](rec *T, cols []schema.ColumnMetadata) []any {
	v := reflect.ValueOf(rec).Elem()
	values := make([]any, len(cols))
	for i, col := range cols {
		values[i] = v.FieldByIndex(col.GoIndex).Interface()
	}
	return values
}
