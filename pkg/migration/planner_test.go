package migration

import (
	"strings"
	"testing"

	"github.com/marshallshelly/costume-shop/pkg/models"
	"github.com/marshallshelly/costume-shop/pkg/schema"
)

func shopTables(t *testing.T) []*schema.TableMetadata {
	t.Helper()
	reg, err := models.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return reg.Tables()
}

func TestCreateTable(t *testing.T) {
	planner := NewPlanner()

	table := &schema.TableMetadata{
		Name: "users",
		Columns: []schema.ColumnMetadata{
			{Name: "id", SQLType: "serial", Nullable: false},
			{Name: "email", SQLType: "varchar(255)", Nullable: false, Unique: true},
			{Name: "name", SQLType: "varchar(100)", Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{
			Name:    "users_pkey",
			Columns: []string{"id"},
		},
	}

	sql := planner.CreateTable(table)

	if !strings.HasPrefix(sql, "CREATE TABLE users (") {
		t.Errorf("Expected plain CREATE TABLE users, got: %s", sql)
	}
	if !strings.Contains(sql, "id serial NOT NULL PRIMARY KEY") {
		t.Errorf("Expected inline PRIMARY KEY after id column, got: %s", sql)
	}
	if !strings.Contains(sql, "email varchar(255) NOT NULL UNIQUE") {
		t.Errorf("Expected email column definition, got: %s", sql)
	}
	if strings.Contains(sql, "name varchar(100) NOT NULL") {
		t.Errorf("Expected nullable name column, got: %s", sql)
	}
}

func TestCreateTableCompositeKey(t *testing.T) {
	table := &schema.TableMetadata{
		Name: "pairs",
		Columns: []schema.ColumnMetadata{
			{Name: "a", SQLType: "integer"},
			{Name: "b", SQLType: "integer"},
		},
		PrimaryKey: &schema.PrimaryKeyMetadata{Name: "pairs_pkey", Columns: []string{"a", "b"}},
		Constraints: []schema.ConstraintMetadata{
			{Name: "pairs_ab_key", Type: schema.UniqueConstraint, Columns: []string{"a", "b"}},
		},
	}

	sql := NewPlanner().CreateTable(table)
	if !strings.Contains(sql, "CONSTRAINT pairs_pkey PRIMARY KEY (a, b)") {
		t.Errorf("Expected composite key, got: %s", sql)
	}
	if !strings.Contains(sql, "CONSTRAINT pairs_ab_key UNIQUE (a, b)") {
		t.Errorf("Expected unique constraint, got: %s", sql)
	}
}

func TestShopSchemaDDL(t *testing.T) {
	planner := NewPlanner()

	byName := make(map[string]string)
	for _, table := range shopTables(t) {
		byName[table.Name] = planner.CreateTable(table)
	}

	tests := []struct {
		table string
		want  []string
	}{
		{"customers", []string{
			"full_name varchar(255) NOT NULL",
			"email varchar(80) NOT NULL",
			"CONSTRAINT customers_email_check CHECK (email LIKE '%_@__%._%')",
			"password varchar(80) NOT NULL",
		}},
		{"costumes", []string{
			"id serial NOT NULL PRIMARY KEY",
			"CONSTRAINT costumes_category_check CHECK (category IN ('adult', 'child', 'baby', 'pet'))",
			"CONSTRAINT costumes_gender_check CHECK (gender IN ('male', 'female', 'unisex'))",
			"size varchar(10) NOT NULL",
			"stock_count integer NOT NULL",
			"price double precision NOT NULL",
		}},
		{"orders", []string{
			"date_placed timestamptz,",
			"'awaiting fulfillment'",
			"CONSTRAINT fk_orders_customer_id_customers FOREIGN KEY (customer_id) REFERENCES customers (id)",
		}},
		{"orders_costumes", []string{
			"FOREIGN KEY (order_id) REFERENCES orders (id)",
			"FOREIGN KEY (costume_id) REFERENCES costumes (id)",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			sql, ok := byName[tt.table]
			if !ok {
				t.Fatalf("table %s not registered", tt.table)
			}
			for _, want := range tt.want {
				if !strings.Contains(sql, want) {
					t.Errorf("Expected %q in:\n%s", want, sql)
				}
			}
			if strings.Contains(sql, "ON DELETE") {
				t.Errorf("Expected no cascading deletes, got:\n%s", sql)
			}
		})
	}
}

func TestPlanOrder(t *testing.T) {
	statements, err := NewExecutor(nil, shopTables(t)).Plan()
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := []string{
		"DROP TABLE IF EXISTS orders_costumes;",
		"DROP TABLE IF EXISTS orders;",
		"DROP TABLE IF EXISTS costumes;",
		"DROP TABLE IF EXISTS customers;",
		"CREATE TABLE customers (",
		"CREATE TABLE costumes (",
		"CREATE TABLE orders (",
		"CREATE TABLE orders_costumes (",
	}
	if len(statements) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(statements))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(statements[i], prefix) {
			t.Errorf("statement %d: expected prefix %q, got %q", i, prefix, statements[i])
		}
	}
}

func TestIdentifiersAreBare(t *testing.T) {
	planner := NewPlanner()
	for _, table := range shopTables(t) {
		for _, stmt := range []string{planner.DropTable(table.Name), planner.CreateTable(table)} {
			if strings.Contains(stmt, `"`) {
				t.Errorf("Expected unquoted identifiers, got: %s", stmt)
			}
		}
	}
	if got := planner.DropTable("orders"); got != "DROP TABLE IF EXISTS orders;" {
		t.Errorf("unexpected drop statement %s", got)
	}
}
