package config

import (
	"context"
	"os"
)

type workDirKey struct{}

// WithWorkDir stores the directory commands operate in.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey{}, dir)
}

// WorkDirFromContext returns the stored working directory, falling back to
// the process working directory.
func WorkDirFromContext(ctx context.Context) string {
	if dir, ok := ctx.Value(workDirKey{}).(string); ok && dir != "" {
		return dir
	}
	dir, _ := os.Getwd()
	return dir
}

// FromContext returns the global config of the stored Resolver, or
// Default() when none is stored.
func FromContext(ctx context.Context) *Config {
	if r := ResolverFromContext(ctx); r != nil {
		return r.Global()
	}
	c := Default()
	return &c
}
