// Package template defines the engine contract HTML renderers draw through.
// Implementations live in subpackages; pongo wraps flosch/pongo2.
package template
