package telemetry

import "context"

type contextKey int

const clientKey contextKey = iota

// WithClient attaches a telemetry Client to ctx.
func WithClient(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

// GetClient retrieves the telemetry Client from ctx, or a NoOpClient if
// none was attached.
//
//nolint:ireturn // returns whichever Client implementation was stored
func GetClient(ctx context.Context) Client {
	if v := ctx.Value(clientKey); v != nil {
		if c, ok := v.(Client); ok {
			return c
		}
	}
	return &NoOpClient{}
}
