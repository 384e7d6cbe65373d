package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/modelviz/pkg/metadata"
)

func pickerMethods() []*metadata.Method {
	return []*metadata.Method{
		{Name: "Main", FullName: "Shop.Api.Program::Main", Module: "Shop.Api", HasBody: true},
		{Name: "Save", FullName: "Shop.Data.Store::Save", Module: "Shop.Data", HasBody: true},
		{Name: "Load", FullName: "Shop.Data.Store::Load", Module: "Shop.Data", HasBody: true},
	}
}

func send(m methodPicker, msgs ...tea.Msg) methodPicker {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(methodPicker)
	}
	return m
}

func TestMethodPickerNavigate(t *testing.T) {
	m := send(newMethodPicker(pickerMethods()),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown}, // clamped at the last row
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if m.selected == nil || m.selected.FullName != "Shop.Data.Store::Save" {
		t.Errorf("selected = %v, want Save", m.selected)
	}
}

func TestMethodPickerFilter(t *testing.T) {
	m := send(newMethodPicker(pickerMethods()),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("lox")},
		tea.KeyMsg{Type: tea.KeyBackspace},
	)
	if m.query != "lo" || len(m.visible) != 1 || m.visible[0].Name != "Load" {
		t.Fatalf("query %q visible %d", m.query, len(m.visible))
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.selected == nil || m.selected.Name != "Load" {
		t.Errorf("selected = %v, want Load", m.selected)
	}
}

func TestMethodPickerNoMatch(t *testing.T) {
	m := send(newMethodPicker(pickerMethods()),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("zzz")},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if m.selected != nil {
		t.Errorf("selected = %v, want nil", m.selected)
	}
	if m.View() == "" {
		t.Error("View() is empty")
	}
}

func TestMethodPickerQuit(t *testing.T) {
	m := newMethodPicker(pickerMethods())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("Update(esc) returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Update(esc) did not quit")
	}
}
