package schema

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

type testAccount struct {
	ID       int    `po:"id,primaryKey,serial"`
	FullName string `po:"full_name,varchar(255),notNull"`
	Email    string `po:"email,varchar(80),notNull,check(email LIKE '%_@__%._%')"`
	internal string
	Ignored  string
}

func (testAccount) TableName() string { return "accounts" }

type testPurchase struct {
	ID        int        `po:"id,primaryKey,serial"`
	PlacedAt  *time.Time `po:"placed_at,timestamptz"`
	State     string     `po:"state,varchar(20),notNull,enum(open|closed|it's done)"`
	AccountID int        `po:"account_id,integer,notNull,fk(accounts.id)"`
	Amount    float64    `po:"amount,notNull"`
}

type LineItem struct {
	ID         int `po:"id,primaryKey,serial"`
	PurchaseID int `po:"purchase_id,integer,notNull,fk(test_purchase(id)),onDelete(cascade)"`
}

func TestParser_Parse(t *testing.T) {
	parser := NewParser()

	t.Run("table name from Tabler", func(t *testing.T) {
		table, err := parser.Parse(testAccount{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if table.Name != "accounts" {
			t.Errorf("expected table name 'accounts', got '%s'", table.Name)
		}
		if len(table.Columns) != 3 {
			t.Errorf("expected 3 columns, got %d", len(table.Columns))
		}
		if table.PrimaryKey == nil || table.PrimaryKey.Columns[0] != "id" {
			t.Fatalf("expected primary key on id, got %+v", table.PrimaryKey)
		}
		if table.PrimaryKey.Name != "accounts_pkey" {
			t.Errorf("expected accounts_pkey, got %s", table.PrimaryKey.Name)
		}
	})

	t.Run("snake case fallback", func(t *testing.T) {
		table, err := parser.Parse(reflect.TypeOf(&LineItem{}))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if table.Name != "line_item" {
			t.Errorf("expected table name 'line_item', got '%s'", table.Name)
		}
	})

	t.Run("column metadata", func(t *testing.T) {
		table, err := parser.Parse(testPurchase{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}

		id, ok := table.Column("id")
		if !ok {
			t.Fatal("id column not found")
		}
		if id.SQLType != "serial" || !id.AutoIncrement || id.Nullable {
			t.Errorf("unexpected id column: %+v", id)
		}

		placed, _ := table.Column("placed_at")
		if placed.SQLType != "timestamptz" || !placed.Nullable {
			t.Errorf("placed_at should be nullable timestamptz, got %+v", placed)
		}

		amount, _ := table.Column("amount")
		if amount.SQLType != "double precision" {
			t.Errorf("expected inferred double precision, got %s", amount.SQLType)
		}
		if amount.GoField != "Amount" || !reflect.DeepEqual(amount.GoIndex, []int{4}) {
			t.Errorf("unexpected field mapping %s %v", amount.GoField, amount.GoIndex)
		}

		want := []string{"id", "placed_at", "state", "account_id", "amount"}
		if got := table.ColumnNames(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if !table.IsPrimaryKey("id") || table.IsPrimaryKey("state") {
			t.Error("IsPrimaryKey mismatch")
		}
	})

	t.Run("check and enum constraints", func(t *testing.T) {
		account, err := parser.Parse(testAccount{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(account.Constraints) != 1 {
			t.Fatalf("expected 1 constraint, got %d", len(account.Constraints))
		}
		check := account.Constraints[0]
		if check.Name != "accounts_email_check" || check.Expression != "(email LIKE '%_@__%._%')" {
			t.Errorf("unexpected check constraint %+v", check)
		}

		purchase, err := parser.Parse(testPurchase{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		state, _ := purchase.Column("state")
		if !reflect.DeepEqual(state.Enum, []string{"open", "closed", "it's done"}) {
			t.Errorf("unexpected enum values %v", state.Enum)
		}
		expr := purchase.Constraints[0].Expression
		if expr != "(state IN ('open', 'closed', 'it''s done'))" {
			t.Errorf("unexpected enum expression %s", expr)
		}
	})

	t.Run("foreign keys", func(t *testing.T) {
		purchase, err := parser.Parse(testPurchase{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if len(purchase.ForeignKeys) != 1 {
			t.Fatalf("expected 1 foreign key, got %d", len(purchase.ForeignKeys))
		}
		fk := purchase.ForeignKeys[0]
		if fk.ReferencedTable != "accounts" || fk.ReferencedColumns[0] != "id" {
			t.Errorf("unexpected reference %+v", fk)
		}
		if fk.OnDelete != NoAction {
			t.Errorf("expected NO ACTION, got %s", fk.OnDelete)
		}
		if fk.Name != "fk_test_purchase_account_id_accounts" {
			t.Errorf("unexpected fk name %s", fk.Name)
		}
		if refs := purchase.References(); !reflect.DeepEqual(refs, []string{"accounts"}) {
			t.Errorf("unexpected references %v", refs)
		}

		item, err := parser.Parse(LineItem{})
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if item.ForeignKeys[0].ReferencedTable != "test_purchase" || item.ForeignKeys[0].OnDelete != Cascade {
			t.Errorf("unexpected fk %+v", item.ForeignKeys[0])
		}
	})

	t.Run("rejects non-structs", func(t *testing.T) {
		if _, err := parser.Parse(42); err == nil {
			t.Error("expected error for int")
		}
		if _, err := parser.Parse(nil); err == nil {
			t.Error("expected error for nil")
		}
		type untagged struct{ Name string }
		if _, err := parser.Parse(untagged{}); err == nil {
			t.Error("expected error for struct without tags")
		}
	})

	t.Run("invalid foreign key", func(t *testing.T) {
		type broken struct {
			Ref int `po:"ref,integer,fk(nowhere)"`
		}
		_, err := parser.Parse(broken{})
		if err == nil || !strings.Contains(err.Error(), "invalid foreign key") {
			t.Errorf("expected invalid foreign key error, got %v", err)
		}
	})
}

func TestSplitTag(t *testing.T) {
	tests := []struct {
		tag  string
		want []string
	}{
		{"id,primaryKey,serial", []string{"id", "primaryKey", "serial"}},
		{"price,numeric(10,2),notNull", []string{"price", "numeric(10,2)", "notNull"}},
		{"note,check(note <> 'a,b')", []string{"note", "check(note <> 'a,b')"}},
	}
	for _, tt := range tests {
		if got := splitTag(tt.tag); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitTag(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Costume":      "costume",
		"OrderCostume": "order_costume",
		"LineItem":     "line_item",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
