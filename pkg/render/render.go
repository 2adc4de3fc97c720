// Package render evaluates object templates such as "{slug}/gallery" or
// "{owner.id}/drafts" against a context map. The folder resolver treats
// rendering as a collaborator: any implementation of Renderer works,
// including test fakes.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

// Renderer evaluates a template against a context and returns the
// rendered string.
type Renderer interface {
	Render(template string, context map[string]any) (string, error)
}

// RenderError reports a template that could not be evaluated. It carries
// the original template, not the partial output, so callers can surface
// the configured value in diagnostics.
type RenderError struct {
	Template string
	Token    string
	Err      error
}

func (e *RenderError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("failed to render template %q: unresolved token {%s}", e.Template, e.Token)
	}
	return fmt.Sprintf("failed to render template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// tokenPattern matches {name} and {name.path.segments} tokens.
var tokenPattern = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*)\}`)

// HasTokens reports whether the template contains any substitution
// tokens. Token-free templates can be resolved before the referenced
// object exists.
func HasTokens(template string) bool {
	return tokenPattern.MatchString(template)
}

// ObjectRenderer resolves {a.b.c} tokens by walking nested maps in the
// context. An unresolved token fails the whole render.
type ObjectRenderer struct{}

// NewObjectRenderer creates a renderer over map contexts.
func NewObjectRenderer() *ObjectRenderer {
	return &ObjectRenderer{}
}

// Render substitutes every token in the template with its context value.
func (r *ObjectRenderer) Render(template string, context map[string]any) (string, error) {
	var renderErr *RenderError

	rendered := tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		if renderErr != nil {
			return ""
		}
		path := match[1 : len(match)-1]
		value, ok := lookup(context, strings.Split(path, "."))
		if !ok {
			renderErr = &RenderError{Template: template, Token: path}
			return ""
		}
		return fmt.Sprintf("%v", value)
	})

	if renderErr != nil {
		return "", renderErr
	}
	return rendered, nil
}

// lookup walks the context by path segments. Intermediate values must be
// map[string]any for the walk to continue.
func lookup(context map[string]any, path []string) (any, bool) {
	current := any(context)
	for _, segment := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}
