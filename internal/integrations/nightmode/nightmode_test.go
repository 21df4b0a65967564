package nightmode

import "testing"

func TestParseSetting(t *testing.T) {
	cases := []struct {
		out     string
		want    bool
		wantErr bool
	}{
		{"true\n", true, false},
		{"false\n", false, false},
		{"  true  ", true, false},
		{"'uldum'\n", false, true},
		{"", false, true},
	}
	for _, tc := range cases {
		got, err := parseSetting(tc.out)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseSetting(%q): expected error", tc.out)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSetting(%q): %v", tc.out, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseSetting(%q) = %v, want %v", tc.out, got, tc.want)
		}
	}
}
