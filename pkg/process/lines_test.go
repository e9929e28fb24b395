package process

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{
			name: "terminal line endings stripped",
			data: "first\r\nsecond\r\n",
			want: []string{"first", "second"},
		},
		{
			name: "empty lines dropped",
			data: "\r\n\r\n[]\r\n\r\n",
			want: []string{"[]"},
		},
		{
			name: "bare newlines",
			data: "a\nb\n",
			want: []string{"a", "b"},
		},
		{
			name: "partial last line kept",
			data: "usage: pwds\r\nEnter password for x: ",
			want: []string{"usage: pwds", "Enter password for x: "},
		},
		{
			name: "whitespace only line kept",
			data: "  \r\n",
			want: []string{"  "},
		},
		{
			name: "no output",
			data: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines([]byte(tt.data))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitLines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
