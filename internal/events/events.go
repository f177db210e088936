// Package events delivers ledger notifications to interested parties.
//
// The ledger calls Observer.Notify after a mutation has been committed.
// Observers must not block for long and must not fail the caller: delivery
// problems are logged by the observer itself.
package events

import (
	"context"

	"go-marketplace-ledger/internal/model"
)

type Observer interface {
	Notify(ctx context.Context, event model.ProductEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event model.ProductEvent)

func (f ObserverFunc) Notify(ctx context.Context, event model.ProductEvent) {
	f(ctx, event)
}

// Multi fans an event out to every observer in order.
type Multi []Observer

func (m Multi) Notify(ctx context.Context, event model.ProductEvent) {
	for _, o := range m {
		if o != nil {
			o.Notify(ctx, event)
		}
	}
}

// Nop discards events.
var Nop Observer = ObserverFunc(func(context.Context, model.ProductEvent) {})
