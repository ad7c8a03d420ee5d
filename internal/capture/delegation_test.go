package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelegation_Match(t *testing.T) {
	d := DefaultDelegation()
	tests := []struct {
		content string
		want    bool
	}{
		{content: "привет дживс", want: true},
		{content: "ДЖИВС, купи хлеб", want: true},
		{content: "buy milk #dd", want: true},
		{content: "купить молоко #дд", want: true},
		{content: "buy milk", want: false},
		{content: "#ДД", want: false},
		{content: "#DD", want: false},
		{content: "", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Match(tt.content), "content %q", tt.content)
	}
}

func TestDelegation_EmptyKeywordNeverMatches(t *testing.T) {
	d := Delegation{Tags: []string{"", "#x"}}
	assert.False(t, d.Match("anything"))
	assert.True(t, d.Match("tagged #x"))
}
