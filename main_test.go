package main

import "testing"

func TestNormalizePort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3000", ":3000"},
		{":8080", ":8080"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
	}

	for _, tt := range tests {
		if got := normalizePort(tt.in); got != tt.want {
			t.Errorf("normalizePort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
