package events

import (
	"context"

	"go.uber.org/zap"

	"go-marketplace-ledger/internal/model"
)

type LogObserver struct {
	logger *zap.Logger
}

func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger.Named("events")}
}

func (o *LogObserver) Notify(_ context.Context, event model.ProductEvent) {
	o.logger.Info("ledger event",
		zap.String("type", string(event.Type)),
		zap.String("topic", event.Topic),
		zap.Uint64("id", event.ID),
		zap.String("name", event.Name),
		zap.String("price", event.Price.String()),
		zap.String("owner", event.Owner),
		zap.Bool("purchased", event.Purchased),
	)
}
