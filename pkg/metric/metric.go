// Copyright 2026 The ksync Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metric provides kernel counters and distributions, exported in the
// Prometheus text format.
//
// Metrics are created once, normally as package variables of the package
// that records them:
//
//	var lockCount = metric.MustCreateNewUint64Metric("/ksync/mutex/locks",
//		"Number of mutex_lock calls.", metric.NewField("kind", []string{"spin", "blocking"}))
//
// Metric names use the slash-separated form and are translated to Prometheus
// names ("/ksync/mutex/locks" becomes "ksync_mutex_locks").
package metric

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// registry holds every metric of the process. A private registry keeps the
// Go runtime collectors out of kernel output.
var registry = prometheus.NewRegistry()

// Field contains the field name and allowed values for the metric which is
// used in registration of the metric.
type Field struct {
	// name is the metric field name.
	name string

	// allowedValues is the list of allowed values for the field.
	allowedValues []string
}

// NewField defines a new Field that can be used to break down a metric.
func NewField(name string, allowedValues []string) Field {
	return Field{name: name, allowedValues: allowedValues}
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

func checkFieldValues(name string, fields []Field, values []string) {
	if len(values) != len(fields) {
		panic(fmt.Sprintf("metric %s: got %d field values, want %d", name, len(values), len(fields)))
	}
	for i, f := range fields {
		if !slices.Contains(f.allowedValues, values[i]) {
			panic(fmt.Sprintf("metric %s: field %s: value %q not allowed", name, f.name, values[i]))
		}
	}
}

// promName translates a slash-separated metric name.
func promName(name string) (string, error) {
	if !strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("metric name %q must start with '/'", name)
	}
	return strings.ReplaceAll(strings.TrimPrefix(name, "/"), "/", "_"), nil
}

// Uint64Metric encapsulates a uint64 that represents some kind of metric to be
// monitored.
type Uint64Metric struct {
	name   string
	fields []Field
	vec    *prometheus.CounterVec
}

// NewUint64Metric creates and registers a new cumulative metric with the
// given name.
func NewUint64Metric(name, description string, fields ...Field) (*Uint64Metric, error) {
	pn, err := promName(name)
	if err != nil {
		return nil, err
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: pn, Help: description}, fieldNames(fields))
	if err := registry.Register(vec); err != nil {
		return nil, fmt.Errorf("registering metric %s: %w", name, err)
	}
	return &Uint64Metric{name: name, fields: fields, vec: vec}, nil
}

// MustCreateNewUint64Metric calls NewUint64Metric and panics if it returns an
// error.
func MustCreateNewUint64Metric(name, description string, fields ...Field) *Uint64Metric {
	m, err := NewUint64Metric(name, description, fields...)
	if err != nil {
		panic(fmt.Sprintf("Unable to create metric %q: %s", name, err))
	}
	return m
}

// Value returns the current value of the metric for the given set of fields.
func (m *Uint64Metric) Value(fieldValues ...string) uint64 {
	checkFieldValues(m.name, m.fields, fieldValues)
	var pb dto.Metric
	if err := m.vec.WithLabelValues(fieldValues...).Write(&pb); err != nil {
		panic(fmt.Sprintf("metric %s: %v", m.name, err))
	}
	return uint64(pb.GetCounter().GetValue())
}

// Increment increments the metric field by 1.
func (m *Uint64Metric) Increment(fieldValues ...string) {
	m.IncrementBy(1, fieldValues...)
}

// IncrementBy increments the metric by v.
func (m *Uint64Metric) IncrementBy(v uint64, fieldValues ...string) {
	checkFieldValues(m.name, m.fields, fieldValues)
	m.vec.WithLabelValues(fieldValues...).Add(float64(v))
}

// DistributionMetric represents a distribution of values in finite buckets.
type DistributionMetric struct {
	name   string
	fields []Field
	vec    *prometheus.HistogramVec
}

// NewDistributionMetric creates and registers a new distribution metric with
// the given upper bucket bounds.
func NewDistributionMetric(name, description string, buckets []float64, fields ...Field) (*DistributionMetric, error) {
	pn, err := promName(name)
	if err != nil {
		return nil, err
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: pn, Help: description, Buckets: buckets}, fieldNames(fields))
	if err := registry.Register(vec); err != nil {
		return nil, fmt.Errorf("registering metric %s: %w", name, err)
	}
	return &DistributionMetric{name: name, fields: fields, vec: vec}, nil
}

// MustCreateNewDistributionMetric creates and registers a distribution metric.
// If an error occurs, it panics.
func MustCreateNewDistributionMetric(name, description string, buckets []float64, fields ...Field) *DistributionMetric {
	d, err := NewDistributionMetric(name, description, buckets, fields...)
	if err != nil {
		panic(fmt.Sprintf("Unable to create metric %q: %s", name, err))
	}
	return d
}

// AddSample adds a sample to the distribution.
func (d *DistributionMetric) AddSample(sample float64, fieldValues ...string) {
	checkFieldValues(d.name, d.fields, fieldValues)
	d.vec.WithLabelValues(fieldValues...).Observe(sample)
}

// Count returns the number of samples recorded for the given fields.
func (d *DistributionMetric) Count(fieldValues ...string) uint64 {
	checkFieldValues(d.name, d.fields, fieldValues)
	var pb dto.Metric
	if err := d.vec.WithLabelValues(fieldValues...).(prometheus.Metric).Write(&pb); err != nil {
		panic(fmt.Sprintf("metric %s: %v", d.name, err))
	}
	return pb.GetHistogram().GetSampleCount()
}

// WriteText writes a snapshot of every metric to w in the Prometheus text
// exposition format.
func WriteText(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
