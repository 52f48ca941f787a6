package logging

import "context"

// Context keys for logging values. Using private types avoids collisions
// with keys set by other packages.
type contextKey int

const (
	componentKey contextKey = iota
	operationKey
)

// WithComponent adds a component name to the context, identifying the
// subsystem generating logs (e.g. "sync", "merge", "scm").
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithOperation adds the current operation kind (e.g. "push", "pull") to
// the context.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey, operation)
}

// ComponentFromContext extracts the component name from ctx, or "" if unset.
func ComponentFromContext(ctx context.Context) string {
	if v := ctx.Value(componentKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// OperationFromContext extracts the operation kind from ctx, or "" if unset.
func OperationFromContext(ctx context.Context) string {
	if v := ctx.Value(operationKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
