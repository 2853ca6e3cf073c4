package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores do cliente. Endpoint usa o path lógico (sem tokens na URL).
var (
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_requests_total",
		Help: "Requisições à API externa, por endpoint e status HTTP.",
	}, []string{"endpoint", "status"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_token_refresh_total",
		Help: "Tentativas de refresh silencioso do token.",
	}, []string{"result"}) // "ok" | "failed"

	BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_bets_placed_total",
		Help: "Apostas múltiplas submetidas com sucesso.",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cache_total",
		Help: "Acessos ao cache local de mercados.",
	}, []string{"result"}) // "hit" | "miss" | "bypass"
)
