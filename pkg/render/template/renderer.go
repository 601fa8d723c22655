package template

import (
	"io"
)

// TemplateRenderer is the seam between renderers and a template engine.
// Every render method returns the output and also copies it to each writer
// passed in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
