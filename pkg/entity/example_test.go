package entity_test

import (
	"fmt"

	"github.com/matzehuels/modelviz/pkg/entity"
	"github.com/matzehuels/modelviz/pkg/metadata"
)

func ExampleExtract() {
	types := []*metadata.Type{
		{
			FullName: "Shop.Models.Invoice",
			Fields: []metadata.Field{
				{Name: "Id", TypeName: "System.Int32"},
				{Name: "Lines", TypeName: "List<Shop.Models.Line>"},
			},
		},
		{FullName: "Shop.Models.ShopContext"},
	}

	m := entity.Extract(types, entity.DefaultFilter())
	for _, name := range m.Names() {
		members, _ := m.Members(name)
		fmt.Println(name, members)
	}
	// Output:
	// Invoice [System.Int32 Id Shop.Models.Line Lines]
}

func ExampleNormalize() {
	fmt.Println(entity.Normalize("List<Shop.Models.Line>"))
	fmt.Println(entity.Normalize("System.String"))
	// Output:
	// Shop.Models.Line
	// System.String
}
