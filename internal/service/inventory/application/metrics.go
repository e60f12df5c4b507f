// internal/service/inventory/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jetcart_stock_blocks_total",
		Help: "Stock block attempts by result (ok / insufficient_stock).",
	}, []string{"result"})

	commitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jetcart_stock_commits_total",
		Help: "Reservation commit attempts by result (ok / expired).",
	}, []string{"result"})

	releasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jetcart_stock_releases_total",
		Help: "Reservation releases by trigger (explicit / lazy / sweep).",
	}, []string{"reason"})
)
