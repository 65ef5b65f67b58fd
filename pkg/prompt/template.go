// Package prompt provides a registry of prompt templates rendered with langchaingo
package prompt

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/prompts"

	perrors "github.com/mmichie/pipes/pkg/errors"
)

// Template represents a prompt template with named substitution slots
type Template struct {
	Name        string
	Description string
	Category    string
	Variables   []Variable
	content     string
	prompt      *prompts.PromptTemplate
}

// Variable describes a template variable
type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
}

// NewTemplate creates an unregistered template. Slots use f-string syntax: {name}.
func NewTemplate(name, content string, vars ...Variable) *Template {
	return &Template{
		Name:        name,
		Description: fmt.Sprintf("Template for %s", name),
		Category:    Categories.General,
		Variables:   vars,
		content:     content,
	}
}

// Content returns the raw template text
func (t *Template) Content() string {
	return t.content
}

// Registry manages prompt templates
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry creates a new template registry
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
	}
}

// Register compiles a template and adds it to the registry
func (r *Registry) Register(tmpl *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl.Name == "" {
		return perrors.New("prompt", "register",
			fmt.Errorf("template name cannot be empty"))
	}

	if _, exists := r.templates[tmpl.Name]; exists {
		return perrors.New("prompt", "register",
			fmt.Errorf("template %q already registered", tmpl.Name))
	}

	if err := tmpl.compile(); err != nil {
		return perrors.New("prompt", "register", err)
	}

	r.templates[tmpl.Name] = tmpl
	return nil
}

// Get retrieves a template by name
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tmpl, exists := r.templates[name]
	if !exists {
		return nil, perrors.New("prompt", "get",
			fmt.Errorf("template %q not found", name))
	}

	return tmpl, nil
}

// List returns all registered templates ordered by name
func (r *Registry) List() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]*Template, 0, len(r.templates))
	for _, tmpl := range r.templates {
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates
}

// ListByCategory returns templates in a specific category
func (r *Registry) ListByCategory(category string) []*Template {
	var templates []*Template
	for _, tmpl := range r.List() {
		if tmpl.Category == category {
			templates = append(templates, tmpl)
		}
	}
	return templates
}

func (t *Template) compile() error {
	names := make([]string, 0, len(t.Variables))
	for _, v := range t.Variables {
		names = append(names, v.Name)
	}

	pt := prompts.PromptTemplate{
		Template:       t.content,
		TemplateFormat: prompts.TemplateFormatFString,
		InputVariables: names,
	}

	// Render once with placeholders so a malformed template fails at registration.
	probe := make(map[string]any, len(names))
	for _, name := range names {
		probe[name] = ""
	}
	if _, err := pt.Format(probe); err != nil {
		return fmt.Errorf("failed to parse template %q: %w", t.Name, err)
	}

	t.prompt = &pt
	return nil
}

// Execute renders the template, applying defaults and rejecting missing required variables
func (t *Template) Execute(values map[string]any) (string, error) {
	if t.prompt == nil {
		if err := t.compile(); err != nil {
			return "", perrors.New("prompt", "execute", err)
		}
	}

	data := make(map[string]any, len(t.Variables))
	for _, v := range t.Variables {
		if val, ok := values[v.Name]; ok {
			data[v.Name] = val
		} else if v.Default != "" {
			data[v.Name] = v.Default
		} else if v.Required {
			return "", perrors.New("prompt", "execute",
				fmt.Errorf("missing required variable %q", v.Name))
		} else {
			data[v.Name] = ""
		}
	}

	out, err := t.prompt.Format(data)
	if err != nil {
		return "", perrors.New("prompt", "execute",
			fmt.Errorf("failed to execute template %q: %w", t.Name, err))
	}

	return out, nil
}

var globalRegistry = NewRegistry()

// Register adds a template to the global registry
func Register(tmpl *Template) error {
	return globalRegistry.Register(tmpl)
}

// Get retrieves a template from the global registry
func Get(name string) (*Template, error) {
	return globalRegistry.Get(name)
}

// List returns all templates from the global registry
func List() []*Template {
	return globalRegistry.List()
}
