package section

import "testing"

func TestLoad_AllBuiltins(t *testing.T) {
	for _, name := range Names() {
		s, err := Load(name)
		if err != nil {
			t.Errorf("Load(%q) error: %v", name, err)
			continue
		}
		if s.Name != name {
			t.Errorf("Load(%q).Name = %q, want %q", name, s.Name, name)
		}
		if s.DisplayName == "" || s.PromptAddendum == "" {
			t.Errorf("Load(%q) has empty display name or addendum", name)
		}
		if len(s.Collections) == 0 {
			t.Errorf("Load(%q) reads no collections", name)
		}
	}
}

func TestNames(t *testing.T) {
	want := []string{"environment", "fire_safety", "first_aid", "incidents", "personnel", "risk_assessment", "training"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoad_Unknown(t *testing.T) {
	if _, err := Load("insurance"); err == nil {
		t.Fatal(`Load("insurance") expected error, got nil`)
	}
}
