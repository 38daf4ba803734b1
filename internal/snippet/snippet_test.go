package snippet

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	existing := []Snippet{{ID: "1", Trigger: "!sig", Content: "x"}}

	tests := []struct {
		name    string
		sn      Snippet
		wantErr bool
	}{
		{"valid", Snippet{ID: "2", Trigger: "!mail", Content: "hi"}, false},
		{"too short", Snippet{ID: "2", Trigger: "a", Content: "hi"}, true},
		{"too long", Snippet{ID: "2", Trigger: strings.Repeat("a", 21), Content: "hi"}, true},
		{"duplicate case-insensitive", Snippet{ID: "2", Trigger: "!SIG", Content: "hi"}, true},
		{"own id skipped", Snippet{ID: "1", Trigger: "!sig", Content: "edited"}, false},
		{"whitespace in trigger", Snippet{ID: "2", Trigger: "a b", Content: "hi"}, true},
		{"only caret markers", Snippet{ID: "2", Trigger: "||", Content: "hi"}, true},
		{"empty content", Snippet{ID: "2", Trigger: "!ok", Content: ""}, true},
		{"content too long", Snippet{ID: "2", Trigger: "!ok", Content: strings.Repeat("x", 10001)}, true},
		{"max content ok", Snippet{ID: "2", Trigger: "!ok", Content: strings.Repeat("x", 10000)}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sn.Validate(existing)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
