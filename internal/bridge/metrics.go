package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bridge's Prometheus instrumentation. All fields
// are optional from the bridge's perspective; a nil *Metrics disables
// instrumentation entirely.
type Metrics struct {
	PollCycles      prometheus.Counter
	PollFailures    prometheus.Counter
	PublishFailures prometheus.Counter
	SensorValue     *prometheus.GaugeVec
}

// NewMetrics creates and registers the bridge metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bmc2mqtt_poll_cycles_total",
			Help: "Completed sensor poll cycles, including skipped ones.",
		}),
		PollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bmc2mqtt_poll_failures_total",
			Help: "Poll cycles skipped because the sensor command failed.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bmc2mqtt_publish_failures_total",
			Help: "MQTT publishes that returned an error.",
		}),
		SensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bmc2mqtt_sensor_value",
			Help: "Last value read from each sensor.",
		}, []string{"sensor", "unit"}),
	}

	reg.MustRegister(m.PollCycles, m.PollFailures, m.PublishFailures, m.SensorValue)
	return m
}

func (m *Metrics) observeReading(name, unit string, value float64) {
	if m == nil {
		return
	}
	m.SensorValue.WithLabelValues(name, unit).Set(value)
}

func (m *Metrics) incPollCycles() {
	if m != nil {
		m.PollCycles.Inc()
	}
}

func (m *Metrics) incPollFailures() {
	if m != nil {
		m.PollFailures.Inc()
	}
}

func (m *Metrics) incPublishFailures() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
