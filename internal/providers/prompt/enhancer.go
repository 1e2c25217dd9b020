// Package prompt renders user prompt templates and forwards them to a
// language model for enhancement.
package prompt

import (
	"context"
	"regexp"
	"strings"
)

// Enhancer generates an improved prompt from a rendered instruction.
type Enhancer interface {
	GeneratePrompt(ctx context.Context, instruction string) (string, error)
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// RenderTemplate substitutes {{var}} placeholders with their values.
// Unknown placeholders are replaced with the empty string so a partially
// filled template still produces a usable instruction.
func RenderTemplate(template string, variables map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return variables[name]
	})
}

// Placeholders lists the distinct variable names referenced by a template,
// in first-appearance order.
func Placeholders(template string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(match[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
