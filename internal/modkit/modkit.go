package modkit

import (
	"net/http"

	"circlesync/internal/modkit/module"
	pstrings "circlesync/internal/platform/strings"
)

// Module is the common surface for API modules that can mount routes and expose ports
type Module = module.Module

// Option mutates build configuration for a module
type Option func(*Built)

// Built is the resolved option set a module reads during New
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
}

// WithName sets a module name used in logs and port lookups
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// Build applies opts in order; later options win
// the prefix is normalized and must not be the root
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	if b.Prefix != "" {
		b.Prefix = pstrings.MustPrefix(b.Prefix)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}
