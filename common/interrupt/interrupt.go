// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interrupt

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Fantom-foundation/memtrie/go/common"
)

// ErrCanceled is reported by long running tools stopped by a signal or by
// the cancellation of their context.
const ErrCanceled = common.ConstError("interrupted")

// IsCancelled reports whether the given context has been canceled.
func IsCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Err returns nil while the context is active. Afterwards it returns an
// error wrapping ErrCanceled; if the context was canceled by a signal, the
// error names the signal.
func Err(ctx context.Context) error {
	if !IsCancelled(ctx) {
		return nil
	}
	if cause := context.Cause(ctx); errors.Is(cause, ErrCanceled) {
		return cause
	}
	return ErrCanceled
}

// Register returns a context that is canceled by the first SIGINT or
// SIGTERM received by the process. Tools use it to stop at a point where
// pending writes can be completed. Only the first signal is intercepted; a
// second one terminates the process as usual. The returned function stops
// the interception and cancels the context; it must be called once the
// guarded work is done.
func Register(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			log.Printf("received %v, stopping after pending writes are completed; repeat to terminate immediately", sig)
			cancel(fmt.Errorf("%w by %v", ErrCanceled, sig))
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(nil) }
}
