package media

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, state string) map[string]string {
	t.Helper()
	var doc map[string]string
	if err := json.Unmarshal([]byte(state), &doc); err != nil {
		t.Fatalf("state is not JSON: %v", err)
	}
	return doc
}

func TestBuildStatePlaying(t *testing.T) {
	state, err := buildState("playing", "spotify\tComfortably Numb\tPink Floyd\n")
	if err != nil {
		t.Fatal(err)
	}
	doc := decode(t, state)

	want := map[string]string{
		"status": "playing",
		"player": "spotify",
		"title":  "Comfortably Numb",
		"artist": "Pink Floyd",
	}
	for key, value := range want {
		if doc[key] != value {
			t.Errorf("state[%s] = %q, want %q", key, doc[key], value)
		}
	}
}

func TestBuildStateIdle(t *testing.T) {
	state, err := buildState("idle", "")
	if err != nil {
		t.Fatal(err)
	}
	doc := decode(t, state)

	if doc["status"] != "idle" {
		t.Errorf("status = %q", doc["status"])
	}
	for _, key := range []string{"player", "title", "artist"} {
		if _, present := doc[key]; present {
			t.Errorf("idle state carries %s", key)
		}
	}
}

func TestBuildStatePartialMetadata(t *testing.T) {
	state, err := buildState("paused", "mpv\tSome Stream")
	if err != nil {
		t.Fatal(err)
	}
	doc := decode(t, state)

	if doc["player"] != "mpv" || doc["title"] != "Some Stream" {
		t.Errorf("state = %v", doc)
	}
	if _, present := doc["artist"]; present {
		t.Error("missing artist field should be omitted")
	}
}
