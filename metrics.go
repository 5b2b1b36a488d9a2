package cocktailsgram

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// metrics owns a private registry so several Apps (tests) can coexist.
type metrics struct {
	registry       *prometheus.Registry
	recipesCreated prometheus.Counter
	signups        prometheus.Counter
	loginFailures  prometheus.Counter
	relations      *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		recipesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cocktailsgram",
			Name:      "recipes_created_total",
			Help:      "Recipes created through the web form.",
		}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cocktailsgram",
			Name:      "signups_total",
			Help:      "Accounts registered.",
		}),
		loginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cocktailsgram",
			Name:      "login_failures_total",
			Help:      "Rejected login attempts, including rate-limited ones.",
		}),
		relations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cocktailsgram",
			Name:      "relation_changes_total",
			Help:      "Favourite, cart, and subscription changes.",
		}, []string{"kind", "op"}),
	}
	reg.MustRegister(m.recipesCreated, m.signups, m.loginFailures, m.relations,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *metrics) middleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "cocktailsgram",
		Registerer: m.registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

func (m *metrics) handler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: m.registry})
}

func (m *metrics) relationChanged(kind string, add bool) {
	op := "remove"
	if add {
		op = "add"
	}
	m.relations.WithLabelValues(kind, op).Inc()
}
