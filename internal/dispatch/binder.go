package dispatch

import "context"

// ConnBinder lets the auth handlers associate the current connection
// with an authenticated user (for push event delivery) without the
// handler layer depending on the transport.
type ConnBinder interface {
	BindUser(userID int64)
	UnbindUser()
}

type binderKey struct{}

func WithBinder(ctx context.Context, b ConnBinder) context.Context {
	return context.WithValue(ctx, binderKey{}, b)
}

// BinderFrom returns the connection binder, or nil when the request did
// not arrive over a bindable connection (tests, legacy path).
func BinderFrom(ctx context.Context) ConnBinder {
	if b, ok := ctx.Value(binderKey{}).(ConnBinder); ok {
		return b
	}
	return nil
}
