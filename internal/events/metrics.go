package events

import (
	"context"

	"go-marketplace-ledger/internal/metrics"
	"go-marketplace-ledger/internal/model"
	"go-marketplace-ledger/pkg/units"
)

type MetricsObserver struct {
	m *metrics.Metrics
}

func NewMetricsObserver(m *metrics.Metrics) *MetricsObserver {
	return &MetricsObserver{m: m}
}

func (o *MetricsObserver) Notify(_ context.Context, event model.ProductEvent) {
	switch event.Type {
	case model.EventProductCreated:
		o.m.ProductsCreated.Inc()
	case model.EventProductPurchased:
		o.m.ProductsPurchased.Inc()
		if eth, err := units.FromWei(event.Price, units.Ether); err == nil {
			o.m.PurchaseVolumeEther.Add(eth.InexactFloat64())
		}
	}
}
