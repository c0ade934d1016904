package attendance

import "testing"

func TestValidCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
		{"12 456", false},
	}
	for _, tc := range cases {
		if got := ValidCode(tc.code); got != tc.want {
			t.Errorf("ValidCode(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestExtractCode(t *testing.T) {
	cases := []struct {
		in       string
		wantCode string
		wantOK   bool
	}{
		{"123456", "123456", true},
		{"join: 654321 now", "654321", true},
		{"https://example.com/join?code=987654", "987654", true},
		{"1234567890", "123456", true}, // first run truncated to six
		{"code 123", "123", false},
		{"no digits here", "", false},
		{"", "", false},
		{"12-3456", "12", false}, // only the first run counts
	}
	for _, tc := range cases {
		code, ok := ExtractCode(tc.in)
		if code != tc.wantCode || ok != tc.wantOK {
			t.Errorf("ExtractCode(%q) = (%q, %v), want (%q, %v)", tc.in, code, ok, tc.wantCode, tc.wantOK)
		}
	}
}
