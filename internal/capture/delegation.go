package capture

import "strings"

// Delegation decides whether an item is meant to be handed off to an assistant.
//
// The keyword matches case-insensitively; tags match case-sensitively. "#ДД" is
// therefore not a delegation tag while "дживс" and "ДЖИВС" are both keywords.
type Delegation struct {
	Keyword string
	Tags    []string
}

func DefaultDelegation() Delegation {
	return Delegation{
		Keyword: "дживс",
		Tags:    []string{"#дд", "#dd"},
	}
}

func (d Delegation) Match(content string) bool {
	if kw := strings.ToLower(strings.TrimSpace(d.Keyword)); kw != "" {
		if strings.Contains(strings.ToLower(content), kw) {
			return true
		}
	}
	for _, tag := range d.Tags {
		if tag != "" && strings.Contains(content, tag) {
			return true
		}
	}
	return false
}
