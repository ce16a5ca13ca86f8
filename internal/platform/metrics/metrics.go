package metrics

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder es lo único que los servicios conocen de métricas.
type Recorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
}

type Nop struct{}

func (Nop) IncCounter(context.Context, string, int64, map[string]string) {}

// Prometheus registra un CounterVec por nombre de métrica, creado en el primer uso.
// Las label names quedan fijadas por el primer set de tags visto.
type Prometheus struct {
	namespace string
	reg       prometheus.Registerer

	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

func NewPrometheus(namespace string, reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Prometheus{
		namespace: sanitize(namespace),
		reg:       reg,
		counters:  map[string]*counter{},
	}
}

func (p *Prometheus) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if value <= 0 {
		return
	}
	norm := make(map[string]string, len(tags))
	for k, v := range tags {
		norm[sanitize(k)] = v
	}

	c := p.counterFor(sanitize(name), norm)
	if c == nil {
		return
	}

	values := make([]string, 0, len(c.labels))
	for _, l := range c.labels {
		values = append(values, norm[l])
	}
	c.vec.WithLabelValues(values...).Add(float64(value))
}

func (p *Prometheus) counterFor(name string, tags map[string]string) *counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.counters[name]; ok {
		return c
	}

	labels := make([]string, 0, len(tags))
	for k := range tags {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: p.namespace,
		Name:      name + "_total",
		Help:      "Counter " + name,
	}, labels)
	if err := p.reg.Register(vec); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil
		}
		vec = existing
	}

	c := &counter{vec: vec, labels: labels}
	p.counters[name] = c
	return c
}

func sanitize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(s)
}

var (
	_ Recorder = Nop{}
	_ Recorder = (*Prometheus)(nil)
)
