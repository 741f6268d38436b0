package intent

import "testing"

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"OPEN_APP":       KindOpenApp,
		"close_app":      KindCloseApp,
		"  Close_All_Apps ": KindCloseAllApps,
		"FORMAT_DISK":    KindUnknown,
		"":               KindUnknown,
		"OPEN":           KindUnknown,
	}
	for in, want := range cases {
		if got := ParseKind(in); got != want {
			t.Errorf("ParseKind(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestKindsExcludesUnknown(t *testing.T) {
	for _, k := range Kinds() {
		if k == KindUnknown {
			t.Fatal("Kinds() must not contain the UNKNOWN sentinel")
		}
	}
	if len(Kinds()) != 7 {
		t.Errorf("expected 7 routable kinds, got %d", len(Kinds()))
	}
}

func TestStepArgTrims(t *testing.T) {
	s := Step{Kind: KindOpenApp, Args: map[string]string{"app": "  Safari "}}
	if got := s.Arg("app"); got != "Safari" {
		t.Errorf("Arg(app) = %q", got)
	}
	if got := s.Arg("missing"); got != "" {
		t.Errorf("Arg(missing) = %q, want empty", got)
	}
}
