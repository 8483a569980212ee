package render

import (
	"html/template"
	"io"
	"path/filepath"
	"sync"

	"github.com/shaverlee/gearbox/config"
)

// htmlFactory builds the built-in html/template engine.
type htmlFactory struct{}

// HTMLFactory returns the factory for the built-in html/template engine.
// It honors the templates.path key (default "templates") and re-parses the
// template set per render when auto_reload_templates is enabled.
func HTMLFactory() EngineFactory {
	return htmlFactory{}
}

func (htmlFactory) Name() string { return "html" }

func (htmlFactory) New(conf *config.Store) (Engine, error) {
	return &htmlEngine{
		pattern: filepath.Join(conf.StringOr("templates.path", "templates"), "*.html"),
		reload:  conf.BoolOr("auto_reload_templates", conf.BoolOr("debug", false)),
	}, nil
}

type htmlEngine struct {
	pattern string
	reload  bool

	mu  sync.Mutex
	set *template.Template
}

func (e *htmlEngine) Name() string { return "html" }

func (e *htmlEngine) Render(w io.Writer, name string, data any) error {
	set, err := e.templates()
	if err != nil {
		return err
	}
	return set.ExecuteTemplate(w, name, data)
}

// templates parses lazily so applications without a template directory can
// still complete setup; a missing directory only fails the render that needs
// it. With auto reload the set is re-parsed on every render.
func (e *htmlEngine) templates() (*template.Template, error) {
	if e.reload {
		return template.ParseGlob(e.pattern)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set == nil {
		set, err := template.ParseGlob(e.pattern)
		if err != nil {
			return nil, err
		}
		e.set = set
	}
	return e.set, nil
}
