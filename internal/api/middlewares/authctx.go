package middlewares

import "context"

func WithUserID(ctx context.Context, userID int64) context.Context {
	if info, ok := ctx.Value(ctxKeyInfo).(*requestInfo); ok {
		info.userID = userID
	}
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(ctxKeyUserID).(int64)
	return v, ok && v > 0
}
