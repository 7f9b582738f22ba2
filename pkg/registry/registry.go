// Package registry holds the table metadata of the registered models, in
// registration order, and orders tables by their foreign key dependencies.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/marshallshelly/costume-shop/pkg/schema"
)

// ErrCycle is returned by Sorted when foreign keys form a cycle.
var ErrCycle = errors.New("foreign key cycle detected")

// Registry is a thread-safe registry for table metadata.
type Registry struct {
	mu     sync.RWMutex
	parser *schema.Parser
	tables map[reflect.Type]*schema.TableMetadata
	names  map[string]*schema.TableMetadata
	order  []*schema.TableMetadata
}

// NewRegistry creates a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{
		parser: schema.NewParser(),
		tables: make(map[reflect.Type]*schema.TableMetadata),
		names:  make(map[string]*schema.TableMetadata),
	}
}

// Register parses and registers models. Registering a model twice is a no-op.
func (r *Registry) Register(models ...any) error {
	for _, model := range models {
		if err := r.register(model); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) register(model any) error {
	modelType := reflect.TypeOf(model)
	if modelType == nil {
		return fmt.Errorf("model must be a struct, got nil")
	}
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tables[modelType]; ok {
		return nil
	}

	table, err := r.parser.Parse(modelType)
	if err != nil {
		return fmt.Errorf("failed to parse model %s: %w", modelType.Name(), err)
	}
	if _, ok := r.names[table.Name]; ok {
		return fmt.Errorf("table %s already registered by another model", table.Name)
	}

	r.tables[modelType] = table
	r.names[table.Name] = table
	r.order = append(r.order, table)
	return nil
}

// Get retrieves TableMetadata for a model value or type.
func (r *Registry) Get(model any) (*schema.TableMetadata, error) {
	modelType, ok := model.(reflect.Type)
	if !ok {
		modelType = reflect.TypeOf(model)
	}
	if modelType == nil {
		return nil, fmt.Errorf("model type is nil")
	}
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	table, found := r.tables[modelType]
	r.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("model type %s not registered", modelType.Name())
	}
	return table, nil
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []*schema.TableMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make([]*schema.TableMetadata, len(r.order))
	copy(tables, r.order)
	return tables
}

// Sorted returns the registered tables so that every table follows the tables
// it references. Ties keep registration order.
func (r *Registry) Sorted() ([]*schema.TableMetadata, error) {
	tables := r.Tables()
	return SortByDependency(tables)
}

// SortByDependency orders tables so referenced tables come first. References
// to tables outside the slice are ignored.
func SortByDependency(tables []*schema.TableMetadata) ([]*schema.TableMetadata, error) {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		index[t.Name] = i
	}

	order, err := topoSort(len(tables), func(i int) []int {
		var deps []int
		for _, ref := range tables[i].References() {
			if j, ok := index[ref]; ok {
				deps = append(deps, j)
			}
		}
		return deps
	})
	if err != nil {
		return nil, err
	}

	sorted := make([]*schema.TableMetadata, len(order))
	for k, i := range order {
		sorted[k] = tables[i]
	}
	return sorted, nil
}

// topoSort returns node indices so that depsFn(i) precede i. When several
// nodes are ready the smallest index wins.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)
	for i := range n {
		for _, d := range depsFn(i) {
			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	var ready []int
	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		return nil, ErrCycle
	}
	return order, nil
}
