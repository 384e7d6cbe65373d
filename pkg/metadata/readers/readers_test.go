package readers

import "testing"

func TestFind(t *testing.T) {
	for _, name := range []string{"go", "dump"} {
		if _, ok := Find(name); !ok {
			t.Errorf("Find(%q) not found", name)
		}
	}
	if _, ok := Find("cecil"); ok {
		t.Error("Find(cecil) should fail")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("Names() = %v", names)
	}
	if names[0] != "go" || names[1] != "dump" {
		t.Errorf("Names() = %v, want [go dump]", names)
	}
}
