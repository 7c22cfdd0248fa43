package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("CHISEL_TEST_URL", "redis://localhost:6379")
	t.Setenv("CHISEL_TEST_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "set variable",
			input: "url: ${CHISEL_TEST_URL}",
			want:  "url: redis://localhost:6379",
		},
		{
			name:  "unset variable expands to empty",
			input: "url: ${CHISEL_TEST_UNSET}",
			want:  "url: ",
		},
		{
			name:  "unset with default",
			input: "channel: ${CHISEL_TEST_UNSET:-chisel:frames}",
			want:  "channel: chisel:frames",
		},
		{
			name:  "empty with default",
			input: "channel: ${CHISEL_TEST_EMPTY:-fallback}",
			want:  "channel: fallback",
		},
		{
			name:  "set variable ignores default",
			input: "url: ${CHISEL_TEST_URL:-unused}",
			want:  "url: redis://localhost:6379",
		},
		{
			name:  "multiple variables",
			input: "${CHISEL_TEST_URL}/${CHISEL_TEST_UNSET:-db}",
			want:  "redis://localhost:6379/db",
		},
		{
			name:  "no variables",
			input: "plain text",
			want:  "plain text",
		},
		{
			name:  "malformed pattern left alone",
			input: "${not a var}",
			want:  "${not a var}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
