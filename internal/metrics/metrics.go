// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records domain events. It satisfies service.Metrics.
type Collector struct {
	messagesCreated   prometheus.Counter
	messagesEdited    prometheus.Counter
	messagesDeleted   prometheus.Counter
	assistantCalls    prometheus.Counter
	assistantRejected prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		messagesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "banter_messages_created_total",
			Help: "Total messages created.",
		}),
		messagesEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "banter_messages_edited_total",
			Help: "Total messages edited.",
		}),
		messagesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "banter_messages_deleted_total",
			Help: "Total messages deleted.",
		}),
		assistantCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "banter_assistant_calls_total",
			Help: "Total completed assistant conversations.",
		}),
		assistantRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "banter_assistant_quota_rejected_total",
			Help: "Total assistant requests rejected by the daily quota.",
		}),
	}

	reg.MustRegister(
		c.messagesCreated,
		c.messagesEdited,
		c.messagesDeleted,
		c.assistantCalls,
		c.assistantRejected,
	)

	return c
}

func (c *Collector) MessageCreated()         { c.messagesCreated.Inc() }
func (c *Collector) MessageEdited()          { c.messagesEdited.Inc() }
func (c *Collector) MessageDeleted()         { c.messagesDeleted.Inc() }
func (c *Collector) AssistantCall()          { c.assistantCalls.Inc() }
func (c *Collector) AssistantQuotaRejected() { c.assistantRejected.Inc() }

// Handler returns the /metrics endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
