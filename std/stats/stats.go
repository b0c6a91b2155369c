// Package stats counts decode outcomes with Prometheus counters.
package stats

import (
	"errors"

	enc "github.com/netwire/ofwire/std/encoding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	ResultOK        = "ok"
	ResultCorrupted = "corrupted"
	ResultRange     = "range"
	ResultDecode    = "decode"
	ResultVersion   = "version_mismatch"
	ResultOther     = "other"
)

// Stats holds the counters of one run, registered on a private registry.
type Stats struct {
	registry *prometheus.Registry

	// Frames counts decoded frames by outermost kind and outcome
	Frames *prometheus.CounterVec
	// Elements counts protocol element lists by element and outcome
	Elements *prometheus.CounterVec
	// Bytes counts input bytes by source
	Bytes *prometheus.CounterVec
}

func New(namespace string) *Stats {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Stats{
		registry: reg,
		Frames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_total",
				Help:      "Total number of frames decoded",
			},
			[]string{"kind", "result"},
		),
		Elements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "elements_total",
				Help:      "Total number of protocol element lists decoded",
			},
			[]string{"element", "version", "result"},
		),
		Bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "input_bytes_total",
				Help:      "Total number of input bytes",
			},
			[]string{"source"},
		),
	}
}

// Registry returns the registry holding the counters.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

// Result classifies a decode error into an outcome label.
// A decode error caused by a field overrun counts as a decode error.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, enc.ErrCorrupted):
		return ResultCorrupted
	case enc.IsVersionMismatch(err):
		return ResultVersion
	case enc.IsDecode(err):
		return ResultDecode
	case enc.IsRange(err):
		return ResultRange
	default:
		return ResultOther
	}
}

// Frame records the outcome of a frame decode.
func (s *Stats) Frame(kind string, err error) {
	s.Frames.WithLabelValues(kind, Result(err)).Inc()
}

// Element records the outcome of an element list decode.
func (s *Stats) Element(element, version string, err error) {
	s.Elements.WithLabelValues(element, version, Result(err)).Inc()
}

// Input records n bytes read from source.
func (s *Stats) Input(source string, n int) {
	s.Bytes.WithLabelValues(source).Add(float64(n))
}

// Sample is one counter value.
type Sample struct {
	Name  string
	Value float64
}

// Samples gathers every counter, sorted by name and labels.
func (s *Stats) Samples() ([]Sample, error) {
	mfs, err := s.registry.Gather()
	if err != nil {
		return nil, err
	}
	var ret []Sample
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			if pairs := m.GetLabel(); len(pairs) > 0 {
				name += "{"
				for i, p := range pairs {
					if i > 0 {
						name += ","
					}
					name += p.GetName() + "=" + p.GetValue()
				}
				name += "}"
			}
			ret = append(ret, Sample{Name: name, Value: m.GetCounter().GetValue()})
		}
	}
	return ret, nil
}
