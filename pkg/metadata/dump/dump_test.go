package dump

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/modelviz/pkg/metadata"
)

const invoiceYAML = `
name: Shop.Api
entry: Shop.Api.Program::Main
types:
  - name: Shop.Api.Models.Invoice
    fields:
      - {name: Id, type: System.Int32}
      - {name: Lines, type: "System.Collections.Generic.List<Shop.Api.Models.Line>"}
  - name: Shop.Api.Program
    methods:
      - name: Main
        instructions:
          - {op: nop}
          - {op: call, method: "Shop.Data.Store::Save", module: Shop.Data}
          - {op: callvirt, method: "System.Console::WriteLine", module: System.Console}
references:
  - name: Shop.Data
    types:
      - name: Shop.Data.Store
        methods:
          - {name: Save, body: true}
`

const invoiceJSON = `{
  "name": "Shop.Api",
  "entry": "Shop.Api.Program::Main",
  "types": [
    {"name": "Shop.Api.Models.Invoice",
     "fields": [{"name": "Id", "type": "System.Int32"},
                {"name": "Lines", "type": "System.Collections.Generic.List<Shop.Api.Models.Line>"}]},
    {"name": "Shop.Api.Program",
     "methods": [{"name": "Main", "instructions": [
        {"op": "nop"},
        {"op": "call", "method": "Shop.Data.Store::Save", "module": "Shop.Data"},
        {"op": "callvirt", "method": "System.Console::WriteLine", "module": "System.Console"}]}]}
  ],
  "references": [
    {"name": "Shop.Data", "types": [{"name": "Shop.Data.Store", "methods": [{"name": "Save", "body": true}]}]}
  ]
}`

const invoiceTOML = `
name = "Shop.Api"
entry = "Shop.Api.Program::Main"

[[types]]
name = "Shop.Api.Models.Invoice"
fields = [
  {name = "Id", type = "System.Int32"},
  {name = "Lines", type = "System.Collections.Generic.List<Shop.Api.Models.Line>"},
]

[[types]]
name = "Shop.Api.Program"

[[types.methods]]
name = "Main"
instructions = [
  {op = "nop"},
  {op = "call", method = "Shop.Data.Store::Save", module = "Shop.Data"},
  {op = "callvirt", method = "System.Console::WriteLine", module = "System.Console"},
]

[[references]]
name = "Shop.Data"

[[references.types]]
name = "Shop.Data.Store"

[[references.types.methods]]
name = "Save"
body = true
`

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"yaml", FormatYAML, invoiceYAML},
		{"json", FormatJSON, invoiceJSON},
		{"toml", FormatTOML, invoiceTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(strings.NewReader(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			checkInvoiceModule(t, m)
		})
	}
}

func checkInvoiceModule(t *testing.T, m metadata.Module) {
	t.Helper()

	if m.Name() != "Shop.Api" {
		t.Errorf("Name() = %q, want Shop.Api", m.Name())
	}
	types := m.Types()
	if len(types) != 2 {
		t.Fatalf("len(Types()) = %d, want 2", len(types))
	}

	invoice := types[0]
	if invoice.FullName != "Shop.Api.Models.Invoice" {
		t.Errorf("Types()[0] = %q", invoice.FullName)
	}
	if len(invoice.Fields) != 2 || invoice.Fields[1].TypeName != "System.Collections.Generic.List<Shop.Api.Models.Line>" {
		t.Errorf("Invoice fields = %+v", invoice.Fields)
	}

	entry, ok := m.EntryPoint()
	if !ok {
		t.Fatal("EntryPoint() not found")
	}
	if entry.FullName != "Shop.Api.Program::Main" || entry.Module != "Shop.Api" || !entry.HasBody {
		t.Errorf("EntryPoint() = %+v", entry)
	}

	calls := 0
	for _, in := range entry.Instructions {
		if in.OpCode.IsCall() {
			calls++
		}
	}
	if len(entry.Instructions) != 3 || calls != 2 {
		t.Errorf("instructions = %d (calls %d), want 3 (calls 2)", len(entry.Instructions), calls)
	}

	save, ok := m.Resolve(metadata.MethodRef{FullName: "Shop.Data.Store::Save", Module: "Shop.Data"})
	if !ok {
		t.Fatal("Resolve(Save) failed")
	}
	if save.Module != "Shop.Data" {
		t.Errorf("Save.Module = %q, want Shop.Data", save.Module)
	}
	if _, ok := m.Resolve(metadata.MethodRef{FullName: "System.Console::WriteLine"}); ok {
		t.Error("Resolve(WriteLine) should fail for unlisted module")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"malformed json", FormatJSON, `{"name": `},
		{"missing name", FormatYAML, "types: []\n"},
		{"unknown format", Format("xml"), "<module/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.data), tt.format); err == nil {
				t.Error("Decode() expected error")
			}
		})
	}
}

func TestReaderOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	if err := os.WriteFile(path, []byte(invoiceYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	var r Reader
	if !r.Supports(path) {
		t.Fatalf("Supports(%q) = false", path)
	}
	if r.Supports("shop.dll") {
		t.Error("Supports(shop.dll) = true")
	}

	m, err := r.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer m.Close()
	checkInvoiceModule(t, m)
}

func TestReaderOpenMissing(t *testing.T) {
	_, err := Reader{}.Open(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("Open() expected error for missing file")
	}
}
