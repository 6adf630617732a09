package mdc

import "context"

// WithFields installs extra keys for the duration of fn and removes
// exactly those keys afterward, leaving surrounding request-level keys
// such as requestId intact. Removal happens even when fn fails.
//
// If a field collides with a pre-existing key, the prior value is
// overwritten and then removed, not restored (last-writer-wins).
func WithFields(ctx context.Context, fields map[string]string, fn func(context.Context) error) error {
	for k, v := range fields {
		Put(ctx, k, v)
	}

	defer func() {
		for k := range fields {
			Remove(ctx, k)
		}
	}()

	return fn(ctx)
}
