package containers

import "testing"

func TestParseList(t *testing.T) {
	out := "web\trunning\ndb\texited\ncache\tRunning\n\n"

	containers := parseList(out)
	if len(containers) != 3 {
		t.Fatalf("parsed %d containers, want 3", len(containers))
	}
	want := map[string]bool{"web": true, "db": false, "cache": true}
	for name, running := range want {
		got, ok := containers[name]
		if !ok {
			t.Errorf("container %s missing", name)
			continue
		}
		if got != running {
			t.Errorf("container %s running = %v, want %v", name, got, running)
		}
	}
}

func TestParseListMalformedLines(t *testing.T) {
	out := "no-tab-here\n\trunning\nok\texited\n"

	containers := parseList(out)
	if len(containers) != 1 {
		t.Fatalf("parsed %v, want only the well-formed line", containers)
	}
	if running, ok := containers["ok"]; !ok || running {
		t.Errorf("containers[ok] = %v/%v", running, ok)
	}
}

func TestParseListEmpty(t *testing.T) {
	if got := parseList(""); len(got) != 0 {
		t.Errorf("parsed %v from empty output", got)
	}
}

func TestSanitise(t *testing.T) {
	cases := map[string]string{
		"web":              "web",
		"My-App_2":         "my-app_2",
		"stack.service/v1": "stack_service_v1",
	}
	for in, want := range cases {
		if got := sanitise(in); got != want {
			t.Errorf("sanitise(%q) = %q, want %q", in, got, want)
		}
	}
}
