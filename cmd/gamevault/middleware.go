package main

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// handler runs one command.
type handler func(ctx context.Context, args []string) error

// errInternal replaces a recovered panic.
var errInternal = errors.New("internal error")

// logging records the command name, outcome and duration. Arguments are never
// logged since they may carry passwords.
func logging(log *zap.Logger, name string, next handler) handler {
	return func(ctx context.Context, args []string) error {
		start := time.Now()
		err := next(ctx, args)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		log.Debug("command",
			zap.String("cmd", name),
			zap.String("outcome", outcome),
			zap.Duration("dur", time.Since(start)),
		)
		return err
	}
}

// recovering turns a panic in a command into errInternal so the shell survives it.
func recovering(log *zap.Logger, name string, next handler) handler {
	return func(ctx context.Context, args []string) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("cmd", name),
				)
				err = errInternal
			}
		}()
		return next(ctx, args)
	}
}
