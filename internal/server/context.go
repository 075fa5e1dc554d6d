// internal/server/context.go
package server

import (
	"context"
)

type contextKey string

const (
	contextKeyUserID    contextKey = "userID"
	contextKeyRequestID contextKey = "requestID"
)

func getUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)
	return userID, ok
}

// RequestID returns the ID assigned to the request by the logging middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
