// Package messaging renders message templates with lead data using the
// Liquid template language.
package messaging

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"leadflow-api/internal/domain"
)

// TemplateEngine handles Liquid template rendering with parse caching.
type TemplateEngine struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewTemplateEngine creates an engine with the CRM filter set registered.
func NewTemplateEngine() *TemplateEngine {
	te := &TemplateEngine{engine: liquid.NewEngine()}
	te.registerFilters()
	return te
}

func (te *TemplateEngine) registerFilters() {
	// {{ lead.company | default: "your company" }}
	te.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	// {{ lead.fullName | first_name }}
	te.engine.RegisterFilter("first_name", func(s string) string {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			return s
		}
		return fields[0]
	})

	// {{ name | capitalize }}
	te.engine.RegisterFilter("capitalize", func(s string) string {
		if len(s) == 0 {
			return s
		}
		return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
	})

	// {{ bio | truncate: 50 }}
	te.engine.RegisterFilter("truncate", func(s string, length int) string {
		if len(s) <= length {
			return s
		}
		if length <= 3 {
			return s[:length]
		}
		return s[:length-3] + "..."
	})

	// {{ email | urlencode }}
	te.engine.RegisterFilter("urlencode", func(s string) string {
		return url.QueryEscape(s)
	})

	// {{ user_input | escape }}
	te.engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})
}

// Parse compiles a template string, returning syntax errors. Used to
// validate templates at create/update time before they are stored.
// Liquid itself tolerates an unterminated tag, so delimiter balance is
// checked separately.
func (te *TemplateEngine) Parse(templateStr string) error {
	if err := checkDelimiters(templateStr); err != nil {
		return err
	}
	_, err := te.engine.ParseString(templateStr)
	return err
}

// checkDelimiters rejects unbalanced {{ }} and {% %} pairs.
func checkDelimiters(s string) error {
	closer := ""
	for i := 0; i+1 < len(s); i++ {
		tok := s[i : i+2]
		switch {
		case closer == "":
			switch tok {
			case "{{":
				closer = "}}"
				i++
			case "{%":
				closer = "%}"
				i++
			case "}}", "%}":
				return fmt.Errorf("unexpected %q at offset %d", tok, i)
			}
		case tok == closer:
			closer = ""
			i++
		case tok == "{{" || tok == "{%":
			return fmt.Errorf("tag opened inside a tag at offset %d, missing %q", i, closer)
		}
	}
	if closer != "" {
		return fmt.Errorf("unterminated tag, missing %q", closer)
	}
	return nil
}

// Render processes a template against a binding context. cacheKey should
// be stable per stored template version (id + updatedAt) so edits bust
// the cache.
func (te *TemplateEngine) Render(cacheKey, templateStr string, bindings map[string]interface{}) (string, error) {
	if cacheKey != "" {
		if cached, ok := te.cache.Load(cacheKey); ok {
			return cached.(*liquid.Template).RenderString(bindings)
		}
	}

	tpl, err := te.engine.ParseString(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	if cacheKey != "" {
		te.cache.Store(cacheKey, tpl)
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}

// RenderMessage renders a stored template's subject and body for a lead.
func (te *TemplateEngine) RenderMessage(tmpl *domain.MessageTemplate, lead *domain.Lead) (domain.RenderedMessage, error) {
	bindings := LeadBindings(lead)

	var msg domain.RenderedMessage

	body, err := te.Render(cacheKeyFor(tmpl, "body"), tmpl.Body, bindings)
	if err != nil {
		return msg, err
	}
	msg.Body = body

	if tmpl.Subject != nil && *tmpl.Subject != "" {
		subject, err := te.Render(cacheKeyFor(tmpl, "subject"), *tmpl.Subject, bindings)
		if err != nil {
			return msg, err
		}
		msg.Subject = subject
	}

	return msg, nil
}

// LeadBindings builds the Liquid context exposed to templates.
func LeadBindings(lead *domain.Lead) map[string]interface{} {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return map[string]interface{}{
		"lead": map[string]interface{}{
			"fullName": lead.FullName,
			"email":    deref(lead.Email),
			"phone":    deref(lead.Phone),
			"company":  deref(lead.Company),
			"status":   string(lead.Status),
			"tags":     lead.Tags,
		},
	}
}

func cacheKeyFor(tmpl *domain.MessageTemplate, part string) string {
	return fmt.Sprintf("%s:%s:%d", tmpl.ID, part, tmpl.UpdatedAt.UnixNano())
}
