package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "Climb Kilimanjaro", "Climb Kilimanjaro"},
		{"strips tags", "<b>Travel</b>", "Travel"},
		{"strips script", "<script>alert(1)</script>Travel", "Travel"},
		{"trims whitespace", "  Travel  ", "Travel"},
		{"markup only", "<img src=x onerror=alert(1)>", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
