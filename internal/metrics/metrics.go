// Package metrics defines the Prometheus collectors exported by the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ProductsCreated     prometheus.Counter
	ProductsPurchased   prometheus.Counter
	PurchaseVolumeEther prometheus.Counter
	Rejections          *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProductsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_products_created_total",
			Help: "Products listed on the ledger.",
		}),
		ProductsPurchased: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_products_purchased_total",
			Help: "Products sold.",
		}),
		PurchaseVolumeEther: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_purchase_volume_ether_total",
			Help: "Sum of purchase payments in ether. Exact amounts are in the transfers table.",
		}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_rejections_total",
			Help: "Rejected ledger operations by error code.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.ProductsCreated, m.ProductsPurchased, m.PurchaseVolumeEther, m.Rejections)
	return m
}

func (m *Metrics) Rejected(code string) {
	m.Rejections.WithLabelValues(code).Inc()
}
