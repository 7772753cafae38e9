package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	responseDuration *prometheus.HistogramVec
	published        *prometheus.CounterVec
	bytesServed      *prometheus.CounterVec
}

func newMetrics(registry prometheus.Registerer) *metrics {
	m := &metrics{
		responseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nyoka_packages_api_response_duration_milliseconds",
			Help:    "The duration of time it takes to receive and write a response to an API request",
			Buckets: prometheus.ExponentialBuckets(9.375, 2, 10),
		}, []string{"route", "code"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyoka_packages_resources_published_total",
			Help: "Resource versions written through the publish endpoint",
		}, []string{"namespace"}),
		bytesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nyoka_packages_payload_bytes_served_total",
			Help: "Payload bytes opened for download",
		}, []string{"namespace"}),
	}
	registry.MustRegister(m.responseDuration, m.published, m.bytesServed)
	return m
}
