package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDomainCounters(t *testing.T) {
	m := NewDomain(prometheus.NewRegistry())

	m.OrderCreated()
	m.OrderCreated()
	m.Cancellation("approved")
	m.StatusUpdated("SHIPPED")
	m.OutboxPublished(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancellations.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusUpdates.WithLabelValues("SHIPPED")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.outboxPublished))
}

func TestNilDomainIsNoop(t *testing.T) {
	var m *Domain
	assert.NotPanics(t, func() {
		m.OrderCreated()
		m.Cancellation("rejected")
		m.StatusUpdated("PENDING")
		m.OutboxPublished(1)
	})
}
