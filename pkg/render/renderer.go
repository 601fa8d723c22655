package render

import (
	"context"

	"github.com/goliatone/go-formpages/pkg/model"
)

// Renderer converts a form plus its current state into bytes (HTML, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.Form, options RenderOptions) ([]byte, error)
}
