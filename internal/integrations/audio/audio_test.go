package audio

import "testing"

func TestParseVolume(t *testing.T) {
	cases := []struct {
		name string
		out  string
		want int
		ok   bool
	}{
		{
			name: "stereo sink",
			out:  "Volume: front-left: 39332 /  60% / -13.31 dB,   front-right: 39332 /  60% / -13.31 dB",
			want: 60,
			ok:   true,
		},
		{
			name: "mono sink",
			out:  "Volume: mono: 65536 / 100% / 0.00 dB",
			want: 100,
			ok:   true,
		},
		{
			name: "no percentage",
			out:  "Volume: mono: 65536",
			ok:   false,
		},
		{
			name: "empty",
			out:  "",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseVolume(tc.out)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("volume = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestParseMute(t *testing.T) {
	if !parseMute("Mute: yes") {
		t.Error("Mute: yes parsed as unmuted")
	}
	if parseMute("Mute: no") {
		t.Error("Mute: no parsed as muted")
	}
}

func TestParseSinks(t *testing.T) {
	out := "0\talsa_output.pci-0000_00_1f.3.analog-stereo\tmodule-alsa-card.c\ts16le 2ch 48000Hz\tSUSPENDED\n" +
		"1\tbluez_output.AA_BB.1\tmodule-bluez5-device.c\ts16le 2ch 44100Hz\tRUNNING\n"

	sinks := parseSinks(out)
	want := []string{
		"alsa_output.pci-0000_00_1f.3.analog-stereo",
		"bluez_output.AA_BB.1",
	}
	if len(sinks) != len(want) {
		t.Fatalf("sinks = %v", sinks)
	}
	for i := range want {
		if sinks[i] != want[i] {
			t.Errorf("sinks[%d] = %q, want %q", i, sinks[i], want[i])
		}
	}
}

func TestParseSinksEmpty(t *testing.T) {
	if got := parseSinks("\n"); len(got) != 0 {
		t.Errorf("sinks = %v from blank output", got)
	}
}
