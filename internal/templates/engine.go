// Package templates renders the relay emails from embedded Liquid templates.
package templates

import (
	"embed"
	"fmt"
	"html"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/osteele/liquid"
)

// Template names
const (
	SignupNotificationHTML = "signup_notification.html"
	SignupNotificationText = "signup_notification.txt"
	SignupWelcomeHTML      = "signup_welcome.html"
	SignupWelcomeText      = "signup_welcome.txt"
	BugReportHTML          = "bug_report.html"
	BugReportText          = "bug_report.txt"
)

//go:embed files/*.liquid
var files embed.FS

// Renderer holds the parsed templates. Templates are parsed once at
// construction; Render is safe for concurrent use.
type Renderer struct {
	engine    *liquid.Engine
	templates map[string]*liquid.Template
}

// New parses every embedded template.
func New() (*Renderer, error) {
	r := &Renderer{
		engine:    liquid.NewEngine(),
		templates: make(map[string]*liquid.Template),
	}
	r.registerFilters()

	paths, err := fs.Glob(files, "files/*.liquid")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		src, err := files.ReadFile(p)
		if err != nil {
			return nil, err
		}
		tpl, perr := r.engine.ParseString(string(src))
		if perr != nil {
			return nil, fmt.Errorf("parsing template %s: %w", p, perr)
		}
		r.templates[strings.TrimSuffix(path.Base(p), ".liquid")] = tpl
	}
	return r, nil
}

// MustNew is New for process start-up; it panics on a broken template.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) registerFilters() {
	// HTML escape for user input: {{ description | escape }}
	r.engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	// Display name for a platform key: {{ platform | platform_name }}
	r.engine.RegisterFilter("platform_name", func(s string) string {
		switch strings.ToLower(s) {
		case "ios":
			return "iOS"
		case "android":
			return "Android"
		default:
			return s
		}
	})
}

// Render executes the named template with the given bindings.
func (r *Renderer) Render(name string, bindings map[string]interface{}) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return out, nil
}

// Names lists the loaded templates, sorted.
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
