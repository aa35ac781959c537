package ctxutil

import (
	"context"
	"slices"
)

type traceDataKey struct{}
type requestDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// RequestData is the principal resolved by the auth middleware.
type RequestData struct {
	UserID      string
	Username    string
	Role        string
	Permissions []string
}

// HasPermission reports whether the principal holds perm. The "admin"
// permission grants everything.
func (rd *RequestData) HasPermission(perm string) bool {
	if rd == nil {
		return false
	}
	return slices.Contains(rd.Permissions, perm) || slices.Contains(rd.Permissions, "admin")
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
