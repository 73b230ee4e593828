/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "guessage"

type metrics struct {
	registry *prometheus.Registry

	connections prometheus.Gauge
	admins      prometheus.Gauge
	actions     *prometheus.CounterVec
	dropped     prometheus.Counter
	uploads     *prometheus.CounterVec
}

// newMetrics builds collectors on a private registry so tests can create
// as many as they like.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connections",
			Help:      "Number of open websocket connections.",
		}),
		admins: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "admin_connections",
			Help:      "Number of open connections bound to an admin player.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_total",
			Help:      "Client actions processed, by type.",
		}, []string{"type"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dropped_connections_total",
			Help:      "Connections dropped for not draining their send queue.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "uploads_total",
			Help:      "Image uploads, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.connections,
		m.admins,
		m.actions,
		m.dropped,
		m.uploads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func registerMetricsHandler(cfg *Config, m *metrics, mux *httprouter.Router) {
	mux.Handler("GET", cfg.prefix+"/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
