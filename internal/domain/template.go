package domain

import (
	"regexp"
	"strings"
)

var templateVariable = regexp.MustCompile(`{{(.*?)}}`)

// ExtractTemplateVariables returns the names inside every {{...}} placeholder
// in order of appearance. The result is never nil.
func ExtractTemplateVariables(text string) []string {
	matches := templateVariable.FindAllStringSubmatch(text, -1)
	vars := make([]string, 0, len(matches))
	for _, m := range matches {
		vars = append(vars, strings.TrimSpace(m[1]))
	}
	return vars
}

// RenderTemplate substitutes {{ key }} placeholders with the given values.
// Placeholders without a value are left as they are.
func RenderTemplate(text string, vars map[string]string) string {
	return templateVariable.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}
