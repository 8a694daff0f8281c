package logging

import "context"

// Before logs msg at info level and then runs op.
func Before[T any](ctx context.Context, l Logger, msg string, fields Fields, op func() (T, error)) (T, error) {
	ForContext(ctx, l).Info(msg, fields)
	return op()
}

// After runs op and logs msg at info level when it succeeds. With
// includeResult the value is attached as the "result" field.
func After[T any](ctx context.Context, l Logger, msg string, includeResult bool, op func() (T, error)) (T, error) {
	result, err := op()
	if err != nil {
		return result, err
	}
	if includeResult {
		ForContext(ctx, l).Info(msg, Fields{"result": result})
	} else {
		ForContext(ctx, l).Info(msg)
	}
	return result, nil
}

// OnError runs op and logs msg at error level when it fails. The error is
// returned unchanged.
func OnError[T any](ctx context.Context, l Logger, msg string, op func() (T, error)) (T, error) {
	result, err := op()
	if err != nil {
		ForContext(ctx, l).Error(msg, err)
	}
	return result, err
}
