package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"netintent/internal/domain"
)

// ErrNoTemplate is returned when a device has no template assigned
var ErrNoTemplate = errors.New("device has no config template")

// Renderer produces configuration text for a device
type Renderer interface {
	Render(ctx context.Context, device domain.Device) (string, error)
}

// templateData is the value templates execute against
type templateData struct {
	Device domain.Device
	Vars   map[string]any
}

// TemplateRenderer renders text/template files from a directory. Missing
// variables are errors rather than empty output.
type TemplateRenderer struct {
	dir string
}

// NewTemplateRenderer creates a renderer reading templates from dir
func NewTemplateRenderer(dir string) *TemplateRenderer {
	return &TemplateRenderer{dir: dir}
}

// Dir returns the template directory
func (r *TemplateRenderer) Dir() string {
	return r.dir
}

// Render executes the device's template
func (r *TemplateRenderer) Render(ctx context.Context, device domain.Device) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !device.HasTemplate() {
		return "", ErrNoTemplate
	}

	path, err := r.templatePath(device.Template)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(filepath.Base(path)).
		Option("missingkey=error").
		Funcs(funcs).
		ParseFiles(path)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", device.Template, err)
	}

	vars := device.Vars
	if vars == nil {
		vars = map[string]any{}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Device: device, Vars: vars}); err != nil {
		return "", fmt.Errorf("render %s for %s: %w", device.Template, device.Name, err)
	}
	return buf.String(), nil
}

// templatePath resolves name inside the template directory
func (r *TemplateRenderer) templatePath(name string) (string, error) {
	path := filepath.Join(r.dir, name)
	rel, err := filepath.Rel(r.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("template %q escapes template directory", name)
	}
	return path, nil
}

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"join": func(sep string, items []any) string {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, sep)
	},
	"default": func(def, v any) any {
		if v == nil {
			return def
		}
		if s, ok := v.(string); ok && s == "" {
			return def
		}
		return v
	},
}
