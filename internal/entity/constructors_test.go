package entity

import "testing"

// deliverable wires one entity into a connected bridge and returns the fake
// connection for message delivery.
func deliverable(t *testing.T, e *Entity) *fakeConn {
	t.Helper()
	conn := newFakeConn(true)
	bridge := newTestBridge(conn)
	if err := bridge.Add(e); err != nil {
		t.Fatal(err)
	}
	bridge.HandleConnect()
	return conn
}

func TestNumberCommandParsing(t *testing.T) {
	var got []float64
	e, err := NewNumber("volume", "Volume", 0, 100, 1, func(v float64) {
		got = append(got, v)
	})
	if err != nil {
		t.Fatal(err)
	}
	conn := deliverable(t, e)

	conn.deliver(t, "testhost/volume/set", "42.5")
	conn.deliver(t, "testhost/volume/set", "not-a-number")
	conn.deliver(t, "testhost/volume/set", "7")

	if len(got) != 2 || got[0] != 42.5 || got[1] != 7 {
		t.Errorf("callback values = %v, want [42.5 7]", got)
	}
}

func TestSelectCommandParsing(t *testing.T) {
	var got []string
	e, err := NewSelect("sink", "Output", []string{"speakers", "headphones"}, func(opt string) {
		got = append(got, opt)
	})
	if err != nil {
		t.Fatal(err)
	}
	conn := deliverable(t, e)

	conn.deliver(t, "testhost/sink/set", "headphones")
	conn.deliver(t, "testhost/sink/set", "microwave")

	if len(got) != 1 || got[0] != "headphones" {
		t.Errorf("callback values = %v, want [headphones]", got)
	}
}

func TestButtonPressed(t *testing.T) {
	var presses int
	e, err := NewButton("lock_screen", "Lock screen", func() { presses++ })
	if err != nil {
		t.Fatal(err)
	}
	conn := deliverable(t, e)

	conn.deliver(t, "testhost/lock_screen/set", "press")
	conn.deliver(t, "testhost/lock_screen/set", "anything")

	if presses != 2 {
		t.Errorf("presses = %d, want 2", presses)
	}
}

func TestTextCommand(t *testing.T) {
	var got string
	e, err := NewText("note", "Note", func(text string) { got = text })
	if err != nil {
		t.Fatal(err)
	}
	conn := deliverable(t, e)

	conn.deliver(t, "testhost/note/set", "hello there")
	if got != "hello there" {
		t.Errorf("text = %q", got)
	}
}

func TestLockCommandParsing(t *testing.T) {
	var got []bool
	e, err := NewLock("session", "Session lock", func(locked bool) {
		got = append(got, locked)
	})
	if err != nil {
		t.Fatal(err)
	}
	conn := deliverable(t, e)

	conn.deliver(t, "testhost/session/set", "true")
	conn.deliver(t, "testhost/session/set", "0")
	conn.deliver(t, "testhost/session/set", "sideways")

	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("callback values = %v, want [true false]", got)
	}
}

func TestMediaPlayerCommandTopics(t *testing.T) {
	var log []string
	e, err := NewMediaPlayer("media", "Media", MediaCommands{
		Play:  func() { log = append(log, "play") },
		Pause: func() { log = append(log, "pause") },
		Next:  func() { log = append(log, "next") },
	})
	if err != nil {
		t.Fatal(err)
	}
	conn := deliverable(t, e)

	conn.deliver(t, "testhost/media/play", "")
	conn.deliver(t, "testhost/media/next", "")
	conn.deliver(t, "testhost/media/pause", "")

	want := []string{"play", "next", "pause"}
	if len(log) != len(want) {
		t.Fatalf("commands = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("commands[%d] = %q, want %q", i, log[i], want[i])
		}
	}

	// Unbound commands have no subscription at all.
	conn.mu.Lock()
	_, stopBound := conn.handlers["testhost/media/stop"]
	conn.mu.Unlock()
	if stopBound {
		t.Error("nil Stop callback must not subscribe a command topic")
	}
}

func TestKindValidity(t *testing.T) {
	valid := []Kind{
		KindSensor, KindBinarySensor, KindSwitch, KindLock, KindButton,
		KindNumber, KindSelect, KindText, KindEvent, KindCamera,
		KindMediaPlayer, KindUpdate,
	}
	for _, k := range valid {
		if !k.Valid() {
			t.Errorf("Kind(%q).Valid() = false", k)
		}
	}
	for _, k := range []Kind{"", "light", "climate", "Sensor"} {
		if k.Valid() {
			t.Errorf("Kind(%q).Valid() = true", k)
		}
	}
}

func TestEntityAccessors(t *testing.T) {
	e, err := NewSensor("battery_level", "Battery level", WithUnit("%"), WithDeviceClass("battery"))
	if err != nil {
		t.Fatal(err)
	}
	if e.ID() != "battery_level" || e.Name() != "Battery level" || e.Kind() != KindSensor {
		t.Errorf("accessors = %s/%s/%s", e.ID(), e.Name(), e.Kind())
	}
	if _, ok := e.State(); ok {
		t.Error("new entity should have no cached state")
	}
	e.SetState("55")
	if state, ok := e.State(); !ok || state != "55" {
		t.Errorf("cached state = %q/%v", state, ok)
	}
}
