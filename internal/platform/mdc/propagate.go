package mdc

import "context"

// Task is a unit of work executed on another execution context, typically
// a pooled worker. The context it receives belongs to the executing
// worker, not to the caller that submitted it.
type Task func(ctx context.Context) error

// Wrap captures the calling context's diagnostic data and returns a task
// that carries it. When the returned task eventually runs, it installs the
// snapshot into the executing context's store (if anything was captured),
// runs the original task, and clears the executing store afterward -
// success or failure. The clear also happens when the snapshot was absent:
// pooled execution contexts may hold stale data from earlier work, and a
// wrapped task must never leak it onward.
//
// Errors from the task are returned unchanged. There are no retries.
// Each call captures its own independent snapshot.
func Wrap(ctx context.Context, task Task) Task {
	snap := Capture(ctx)

	return func(execCtx context.Context) error {
		if !snap.Absent() {
			Install(execCtx, snap)
		}

		defer Clear(execCtx)

		return task(execCtx)
	}
}

// WrapResult is Wrap for tasks that produce a value alongside the error.
func WrapResult[T any](ctx context.Context, task func(context.Context) (T, error)) func(context.Context) (T, error) {
	snap := Capture(ctx)

	return func(execCtx context.Context) (T, error) {
		if !snap.Absent() {
			Install(execCtx, snap)
		}

		defer Clear(execCtx)

		return task(execCtx)
	}
}
