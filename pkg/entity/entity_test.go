package entity

import (
	"reflect"
	"testing"

	"github.com/matzehuels/modelviz/pkg/metadata"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"System.Int32", "System.Int32"},
		{"List<Shop.Models.Line>", "Shop.Models.Line"},
		{"System.Collections.Generic.ICollection<Order>", "Order"},
		{"Dictionary<int, string>", "int, string"},
		{"List<List<int>>", "List<int"},
		{"<Name>k__BackingField", "Name"},
		{"", ""},
		{"A<>", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"List<List<int>>",
		"Dictionary<string, List<Order>>",
		"IEnumerable<KeyValuePair<int,string>>",
		"a<b>c<d>",
		"<<>>",
		"plain",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestSimpleName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Shop.Models.Invoice", "Invoice"},
		{"example.com/shop/models.Invoice", "Invoice"},
		{"Invoice", "Invoice"},
		{"Shop.Models.", "Shop.Models."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SimpleName(tt.in); got != tt.want {
			t.Errorf("SimpleName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	f := DefaultFilter()
	tests := []struct {
		name string
		want bool
	}{
		{"Shop.Models.Invoice", true},
		{"Shop.Models.Customers.Customer", true},
		{"Shop.Services.Billing", false},
		{"Shop.Models.Repositories.Interfaces.IInvoiceRepository", false},
		{"Shop.Models.Repositories.Implementations.InvoiceRepository", false},
		{"Shop.Models.ShopContext", false},
		{"Shop.Models.Repositories.Cache", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Matches(tt.name); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFilterCustom(t *testing.T) {
	f := Filter{Include: "models", Exclude: []string{"internal"}}
	if !f.Matches("example.com/shop/models.Invoice") {
		t.Error("custom include should match")
	}
	if f.Matches("example.com/shop/internal/models.Row") {
		t.Error("custom exclude should reject")
	}
	if !(Filter{}).Matches("anything") {
		t.Error("empty filter should match everything")
	}
}

func TestDefaultFilterIsCopy(t *testing.T) {
	f := DefaultFilter()
	f.Exclude[0] = "changed"
	if DefaultExclude[0] != "Models.Repositories.Interfaces" {
		t.Error("DefaultFilter() shares its Exclude slice")
	}
}

func invoiceTypes() []*metadata.Type {
	return []*metadata.Type{
		{
			FullName: "Shop.Models.Invoice",
			Fields: []metadata.Field{
				{Name: "Id", TypeName: "System.Int32"},
				{Name: "Lines", TypeName: "List<Shop.Models.Line>"},
			},
		},
		{FullName: "Shop.Models.Line", Fields: []metadata.Field{{Name: "Sku", TypeName: "System.String"}}},
		{FullName: "Shop.Models.Repositories.Interfaces.IInvoiceRepository"},
		{FullName: "Shop.Models.ShopContext", Fields: []metadata.Field{{Name: "Invoices", TypeName: "DbSet<Invoice>"}}},
		{FullName: "Shop.Program"},
	}
}

func TestExtract(t *testing.T) {
	m := Extract(invoiceTypes(), DefaultFilter())

	if got, want := m.Names(), []string{"Invoice", "Line"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	members, ok := m.Members("Invoice")
	if !ok {
		t.Fatal("Members(Invoice) missing")
	}
	want := []Member{
		{Type: "System.Int32", Name: "Id"},
		{Type: "Shop.Models.Line", Name: "Lines"},
	}
	if !reflect.DeepEqual(members, want) {
		t.Errorf("Members(Invoice) = %v, want %v", members, want)
	}
	if m.MemberCount() != 3 {
		t.Errorf("MemberCount() = %d, want 3", m.MemberCount())
	}
	if len(m.Collisions()) != 0 {
		t.Errorf("Collisions() = %v, want none", m.Collisions())
	}
}

func TestExtractExcludesEverythingFiltered(t *testing.T) {
	f := DefaultFilter()
	m := Extract(invoiceTypes(), f)
	for _, typ := range invoiceTypes() {
		_, ok := m.Members(SimpleName(typ.FullName))
		if ok != f.Matches(typ.FullName) {
			t.Errorf("entity %q present = %v, filter = %v", typ.FullName, ok, f.Matches(typ.FullName))
		}
	}
}

func TestExtractCollision(t *testing.T) {
	types := []*metadata.Type{
		{FullName: "Shop.Models.Address", Fields: []metadata.Field{{Name: "Street", TypeName: "string"}}},
		{FullName: "Shop.Models.Customers.Customer"},
		{FullName: "Shop.Models.Billing.Address", Fields: []metadata.Field{{Name: "Iban", TypeName: "string"}}},
	}
	m := Extract(types, DefaultFilter())

	if got, want := m.Names(), []string{"Address", "Customer"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	members, _ := m.Members("Address")
	if len(members) != 1 || members[0].Name != "Iban" {
		t.Errorf("Members(Address) = %v, want the later type's members", members)
	}
	collisions := m.Collisions()
	if len(collisions) != 1 || collisions[0].Replaced != "Shop.Models.Address" || collisions[0].By != "Shop.Models.Billing.Address" {
		t.Errorf("Collisions() = %+v", collisions)
	}
}

func TestExtractNoFields(t *testing.T) {
	m := Extract([]*metadata.Type{{FullName: "Shop.Models.Marker"}}, DefaultFilter())
	members, ok := m.Members("Marker")
	if !ok || len(members) != 0 {
		t.Errorf("Members(Marker) = %v, %v; want empty, true", members, ok)
	}
}

func TestMemberString(t *testing.T) {
	m := Member{Type: "System.Int32", Name: "Id"}
	if m.String() != "System.Int32 Id" {
		t.Errorf("String() = %q", m.String())
	}
}

func TestInventory(t *testing.T) {
	types := invoiceTypes()
	types[4].Methods = []*metadata.Method{{Name: "Main", FullName: "Shop.Program::Main", HasBody: true}}
	mod := metadata.NewStatic("Shop", types, "Shop.Program::Main")

	inv := Inventory(mod, DefaultFilter())
	if len(inv) != len(types) {
		t.Fatalf("len(Inventory()) = %d, want %d", len(inv), len(types))
	}
	if !inv[0].Entity || inv[0].Fields != 2 {
		t.Errorf("Inventory()[0] = %+v", inv[0])
	}
	last := inv[4]
	if last.Entity || !reflect.DeepEqual(last.Methods, []string{"Main"}) {
		t.Errorf("Inventory()[4] = %+v", last)
	}
}
