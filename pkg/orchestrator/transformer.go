package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formpages/pkg/model"
)

// Transformer mutates a page form after it is built and before it is
// localised. Implementations can point the form at a route, rename labels
// or inject metadata.
type Transformer interface {
	Transform(ctx context.Context, form *model.Form) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.Form) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.Form) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// Chain runs transformers in order and stops at the first error.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, form *model.Form) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := t.Transform(ctx, form); err != nil {
				return err
			}
		}
		return nil
	})
}

// ActionTransformer points forms at pattern, where "{id}" is replaced with
// the form ID. Forms that already carry an action are left alone.
func ActionTransformer(pattern string) Transformer {
	return TransformerFunc(func(_ context.Context, form *model.Form) error {
		if form == nil {
			return fmt.Errorf("action transformer: form is nil")
		}
		if strings.TrimSpace(form.Action) == "" {
			form.Action = strings.ReplaceAll(pattern, "{id}", form.ID)
		}
		if strings.TrimSpace(form.Method) == "" {
			form.Method = "post"
		}
		return nil
	})
}

// MetadataTransformer merges entries into the form metadata.
func MetadataTransformer(entries map[string]string) Transformer {
	return TransformerFunc(func(_ context.Context, form *model.Form) error {
		if form == nil || len(entries) == 0 {
			return nil
		}
		form.Metadata = mergeStringMap(form.Metadata, entries)
		return nil
	})
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
