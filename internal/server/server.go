package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Options configures NewHandler.
type Options struct {
	AllowedOrigins []string
	// RateLimiter is optional.
	RateLimiter *RateLimiter
}

// NewHandler routes the review and progress procedures behind authentication.
// HTTP/2 is served without TLS for Connect and gRPC clients.
func NewHandler(review *ReviewHandler, progress *ProgressHandler, authenticator *Authenticator, opts Options) http.Handler {
	interceptors := []connect.Interceptor{
		NewLoggingInterceptor(),
		NewRecoveryInterceptor(),
		NewAuthInterceptor(authenticator, opts.RateLimiter),
	}
	if opts.RateLimiter != nil {
		interceptors = append(interceptors, NewRateLimitInterceptor(opts.RateLimiter))
	}
	handlerOptions := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(interceptors...),
	}

	mux := http.NewServeMux()
	mux.Handle(StartSessionProcedure, connect.NewUnaryHandler(StartSessionProcedure, review.StartSession, handlerOptions...))
	mux.Handle(CurrentItemProcedure, connect.NewUnaryHandler(CurrentItemProcedure, review.CurrentItem, handlerOptions...))
	mux.Handle(AnswerProcedure, connect.NewUnaryHandler(AnswerProcedure, review.Answer, handlerOptions...))
	mux.Handle(SessionStatusProcedure, connect.NewUnaryHandler(SessionStatusProcedure, review.SessionStatus, handlerOptions...))
	mux.Handle(EndSessionProcedure, connect.NewUnaryHandler(EndSessionProcedure, review.EndSession, handlerOptions...))
	mux.Handle(RegisterItemProcedure, connect.NewUnaryHandler(RegisterItemProcedure, review.RegisterItem, handlerOptions...))
	mux.Handle(UnregisterItemProcedure, connect.NewUnaryHandler(UnregisterItemProcedure, review.UnregisterItem, handlerOptions...))
	mux.Handle(SetCompletedProcedure, connect.NewUnaryHandler(SetCompletedProcedure, review.SetCompleted, handlerOptions...))
	mux.Handle(ListHistoryProcedure, connect.NewUnaryHandler(ListHistoryProcedure, review.ListHistory, handlerOptions...))
	mux.Handle(GetLevelProgressProcedure, connect.NewUnaryHandler(GetLevelProgressProcedure, progress.GetLevelProgress, handlerOptions...))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return h2c.NewHandler(corsMiddleware(mux, opts.AllowedOrigins), &http2.Server{})
}

// NewLoggingInterceptor logs every procedure call with its code and duration.
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"duration", time.Since(start),
			}
			if err != nil {
				code := connect.CodeOf(err)
				attrs = append(attrs, "code", code.String(), "error", err)
				if code == connect.CodeInternal || code == connect.CodeUnavailable {
					slog.Error("request failed", attrs...)
				} else {
					slog.Info("request rejected", attrs...)
				}
				return resp, err
			}
			slog.Debug("request served", attrs...)
			return resp, nil
		}
	}
}

// NewRecoveryInterceptor turns a panic of a handler into CodeInternal.
func NewRecoveryInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (resp connect.AnyResponse, err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic in handler", "procedure", req.Spec().Procedure, "panic", r)
					err = connect.NewError(connect.CodeInternal, fmt.Errorf("panic: %v", r))
				}
			}()
			return next(ctx, req)
		}
	}
}
