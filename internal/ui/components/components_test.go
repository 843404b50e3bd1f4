package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMultiChoice_CursorAndChoice(t *testing.T) {
	mc := NewMultiChoice("Pick one", []string{"red", "green", "blue"}, 1, NoChoice)
	if mc.Chosen != NoChoice {
		t.Fatalf("expected no choice, got %d", mc.Chosen)
	}

	mc, _ = mc.Update(specialKey(tea.KeyDown))
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	mc, _ = mc.Update(specialKey(tea.KeyDown))
	if mc.Cursor != 2 {
		t.Errorf("cursor should stop at last option, got %d", mc.Cursor)
	}

	mc, _ = mc.Update(specialKey(tea.KeyEnter))
	if mc.Chosen != 2 {
		t.Errorf("expected chosen 2, got %d", mc.Chosen)
	}
	if mc.IsCorrect() {
		t.Error("option 2 should not be correct")
	}

	mc, _ = mc.Update(keyPress('b'))
	if mc.Chosen != 1 || mc.Cursor != 1 {
		t.Errorf("letter key should choose option 1, got chosen %d cursor %d", mc.Chosen, mc.Cursor)
	}
	if !mc.IsCorrect() {
		t.Error("option 1 should be correct")
	}
}

func TestMultiChoice_RevealIgnoresInput(t *testing.T) {
	mc := NewMultiChoice("Pick one", []string{"a", "b"}, 0, 1)
	mc.Reveal = true
	mc, _ = mc.Update(keyPress('a'))
	if mc.Chosen != 1 {
		t.Errorf("revealed choice should not change, got %d", mc.Chosen)
	}
	if !strings.Contains(mc.View(), "B)") {
		t.Error("view should list option B")
	}
}

func TestNewMultiChoice_OutOfRangeChoice(t *testing.T) {
	mc := NewMultiChoice("q", []string{"a", "b"}, 0, 7)
	if mc.Chosen != NoChoice || mc.Cursor != 0 {
		t.Errorf("got chosen %d cursor %d", mc.Chosen, mc.Cursor)
	}
}

func TestOptionIndex(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"a", 0, true},
		{"D", 3, true},
		{"2", 1, true},
		{"e", 0, false},
		{"0", 0, false},
		{"enter", 0, false},
		{"?", 0, false},
	}
	for _, tt := range tests {
		got, ok := OptionIndex(tt.key, 4)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("OptionIndex(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	var fired string
	m := NewMenu([]MenuItem{
		{Label: "off", Disabled: true},
		{Label: "one", Action: func() tea.Cmd { fired = "one"; return nil }},
		{Label: "off2", Disabled: true},
		{Label: "two", Action: func() tea.Cmd { fired = "two"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("expected to skip disabled item, got %d", m.Selected)
	}
	m.Update(specialKey(tea.KeyEnter))
	if fired != "two" {
		t.Errorf("expected action two, got %q", fired)
	}
}

func TestTextInput_MaskedHidesValue(t *testing.T) {
	ti := NewTextInput("key", true, 40)
	for _, r := range "sk-secret" {
		ti, _ = ti.Update(keyPress(r))
	}
	if ti.Value() != "sk-secret" {
		t.Errorf("value = %q", ti.Value())
	}
	if strings.Contains(ti.View(), "secret") {
		t.Error("masked view leaked the key")
	}
}

func TestAnswerBox_Value(t *testing.T) {
	box := NewAnswerBox("answer", 40, 5)
	box.SetValue("  I led the migration  ")
	if box.Value() != "I led the migration" {
		t.Errorf("value = %q", box.Value())
	}
	if box.WordCount() != 4 {
		t.Errorf("word count = %d", box.WordCount())
	}
}

func TestProgressBar_ClampsFraction(t *testing.T) {
	full := NewProgressBar("", 1.5, true, 20)
	if full.Fraction != 1 || !strings.Contains(full.View(), "100%") {
		t.Errorf("over-full bar not clamped: %v %q", full.Fraction, full.View())
	}
	empty := NewProgressBar("Answered", -1, true, 20)
	if empty.Fraction != 0 || !strings.Contains(empty.View(), "  0%") {
		t.Errorf("negative bar not clamped: %v %q", empty.Fraction, empty.View())
	}
	if !strings.Contains(empty.View(), "Answered") {
		t.Error("label missing")
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(3, 4); got != 0.75 {
		t.Errorf("Ratio(3, 4) = %v", got)
	}
	if got := Ratio(1, 0); got != 0 {
		t.Errorf("Ratio(1, 0) = %v", got)
	}
}

func TestMenu_HomeEndAndAllDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "── Behavioral ──", Disabled: true},
		{Label: "first"},
		{Label: "middle"},
		{Label: "last"},
		{Label: "── end ──", Disabled: true},
	})
	m, _ = m.Update(keyPress('G'))
	if m.Selected != 3 {
		t.Errorf("end should select last enabled item, got %d", m.Selected)
	}
	m, _ = m.Update(keyPress('g'))
	if m.Selected != 1 {
		t.Errorf("home should select first enabled item, got %d", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyUp))
	if m.Selected != 1 {
		t.Errorf("up past the heading should stay, got %d", m.Selected)
	}

	headings := NewMenu([]MenuItem{{Label: "a", Disabled: true}, {Label: "b", Disabled: true}})
	if _, cmd := headings.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("enter on a disabled item should do nothing")
	}
}

func TestButton_View(t *testing.T) {
	on := NewButton("Evaluate", true).View()
	off := NewButton("Evaluate", false).View()
	if !strings.Contains(on, "▸ Evaluate") {
		t.Errorf("enabled button = %q", on)
	}
	if strings.Contains(off, "▸") || !strings.Contains(off, "Evaluate") {
		t.Errorf("disabled button = %q", off)
	}
}
