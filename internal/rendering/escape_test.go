package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Fire Safety 101", "Fire Safety 101"},
		{"ampersand", "Q & A", "Q &amp; A"},
		{"angle brackets", "<Intro>", "&lt;Intro&gt;"},
		{"quotes", `"Bob's" course`, "&quot;Bob&apos;s&quot; course"},
		{"unicode", "Sécurité ✓", "Sécurité ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeXML(tt.input))
		})
	}
}
