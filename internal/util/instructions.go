package util

import (
	"strings"
	"text/template"
)

// InstructionData is what an instruction template can reference.
type InstructionData struct {
	// Date is the local date of the turn, formatted as 2006-01-02.
	Date string
	// Title is the session title.
	Title string
}

// RenderInstructions expands {{.Date}} and {{.Title}} in text. Text without
// template markers is returned unchanged. Referencing any other field is an
// error.
func RenderInstructions(text string, data InstructionData) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := template.New("instructions").Parse(text)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
