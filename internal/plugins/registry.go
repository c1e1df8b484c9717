package plugins

import (
	"context"
	"fmt"
)

type factory func(deps Deps) ActivityResetPlugin

var factories = map[string]factory{
	"quiz":          func(d Deps) ActivityResetPlugin { return NewQuizPlugin(d) },
	"scorm":         func(d Deps) ActivityResetPlugin { return NewScormPlugin(d) },
	"assign":        func(d Deps) ActivityResetPlugin { return NewAssignPlugin(d) },
	"lesson":        func(d Deps) ActivityResetPlugin { return NewLessonPlugin(d) },
	"choice":        func(d Deps) ActivityResetPlugin { return NewChoicePlugin(d) },
	"customcert":    func(d Deps) ActivityResetPlugin { return NewCustomCertPlugin(d) },
	"h5pactivity":   func(d Deps) ActivityResetPlugin { return NewH5PActivityPlugin(d) },
	"lti":           func(d Deps) ActivityResetPlugin { return NewLTIPlugin(d) },
	"hotpot":        func(d Deps) ActivityResetPlugin { return NewHotPotPlugin(d) },
	"questionnaire": func(d Deps) ActivityResetPlugin { return NewQuestionnairePlugin(d) },
}

// SupportedActivities lists every activity type in default registration order.
func SupportedActivities() []string {
	return []string{
		"quiz", "scorm", "assign", "lesson", "choice",
		"customcert", "h5pactivity", "lti", "hotpot", "questionnaire",
	}
}

// ModuleCatalog reports which activity modules the host has installed.
type ModuleCatalog interface {
	InstalledModules(ctx context.Context) ([]string, error)
}

// Registry is the fixed, ordered set of plugins built at start-up.
type Registry struct {
	plugins []ActivityResetPlugin
	modules ModuleCatalog
}

// NewRegistry builds plugins for the given names, in order. An empty list registers every
// supported activity type.
func NewRegistry(names []string, deps Deps, modules ModuleCatalog) (*Registry, error) {
	if len(names) == 0 {
		names = SupportedActivities()
	}

	seen := make(map[string]bool, len(names))
	plugins := make([]ActivityResetPlugin, 0, len(names))
	for _, name := range names {
		build, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("unknown activity plugin %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("activity plugin %q registered twice", name)
		}
		seen[name] = true
		plugins = append(plugins, build(deps))
	}

	return NewRegistryOf(modules, plugins...), nil
}

// NewRegistryOf wraps already built plugins.
func NewRegistryOf(modules ModuleCatalog, plugins ...ActivityResetPlugin) *Registry {
	return &Registry{plugins: plugins, modules: modules}
}

// Plugins returns every registered plugin, installed or not.
func (r *Registry) Plugins() []ActivityResetPlugin {
	return append([]ActivityResetPlugin(nil), r.plugins...)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		names = append(names, p.Name())
	}
	return names
}

// Installed returns the registered plugins whose activity module exists on the host.
func (r *Registry) Installed(ctx context.Context) ([]ActivityResetPlugin, error) {
	if r.modules == nil {
		return r.Plugins(), nil
	}

	names, err := r.modules.InstalledModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list installed modules: %w", err)
	}
	installed := make(map[string]bool, len(names))
	for _, name := range names {
		installed[name] = true
	}

	out := make([]ActivityResetPlugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		if installed[p.Name()] {
			out = append(out, p)
		}
	}
	return out, nil
}

// RenderSettingsFields lets every installed plugin add its controls.
func (r *Registry) RenderSettingsFields(ctx context.Context, form FormBuilder) error {
	plugins, err := r.Installed(ctx)
	if err != nil {
		return err
	}
	for _, p := range plugins {
		p.RenderSettingsFields(form)
	}
	return nil
}

// RegisterSiteSettings collects the site defaults of every installed plugin.
func (r *Registry) RegisterSiteSettings(ctx context.Context, settings SettingsRegistry) error {
	plugins, err := r.Installed(ctx)
	if err != nil {
		return err
	}
	for _, p := range plugins {
		p.RegisterSiteSettings(settings)
	}
	return nil
}
