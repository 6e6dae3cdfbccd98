// Copyright (c) 2015-2024 MinIO, Inc.
//
// This file is part of MinIO Object Storage stack
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package metrics instruments the erasure core's group-level outcomes,
// the way the teacher's metrics-v3-cluster-erasure-set.go instruments its
// own erasure-set health: small, named counters a caller registers
// against its own prometheus.Registerer rather than a package-global one.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "erasure"

// Recorder holds the prometheus collectors for one erasure subsystem
// instance. A nil *Recorder is valid and every method becomes a no-op,
// matching the package's "logging never substitutes for an error return,
// but is also never mandatory" stance.
type Recorder struct {
	groupsEncoded   prometheus.Counter
	groupsRecovered *prometheus.CounterVec
	groupsSkipped   prometheus.Counter
	encodeFailures  *prometheus.CounterVec
	decodeFailures  *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors with reg. reg may
// be prometheus.DefaultRegisterer or a test-local registry.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		groupsEncoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_encoded_total",
			Help:      "Number of groups for which parity was successfully computed.",
		}),
		groupsRecovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_recovered_total",
			Help:      "Number of groups successfully reconstructed, labeled by erasure count.",
		}, []string{"erasures"}),
		groupsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_skipped_unrecoverable_total",
			Help:      "Number of groups seen by recover with more erasures than parity can cover.",
		}),
		encodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_failures_total",
			Help:      "Number of generate_coding calls that failed for a given group.",
		}, []string{"group"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Number of recover calls whose coding primitive decode step failed.",
		}, []string{"group"}),
	}
	if reg != nil {
		reg.MustRegister(r.groupsEncoded, r.groupsRecovered, r.groupsSkipped, r.encodeFailures, r.decodeFailures)
	}
	return r
}

// OrNop returns r, or a non-nil no-op Recorder if r is nil.
func OrNop(r *Recorder) *Recorder {
	if r == nil {
		return &Recorder{}
	}
	return r
}

func groupLabel(g uint64) string {
	return strconv.FormatUint(g, 10)
}

// GroupEncoded records a successfully encoded group.
func (r *Recorder) GroupEncoded(group uint64) {
	if r == nil || r.groupsEncoded == nil {
		return
	}
	r.groupsEncoded.Inc()
}

// EncodeFailed records a failed generate_coding attempt on group.
func (r *Recorder) EncodeFailed(group uint64) {
	if r == nil || r.encodeFailures == nil {
		return
	}
	r.encodeFailures.WithLabelValues(groupLabel(group)).Inc()
}

// GroupRecovered records a successfully reconstructed group with the
// given number of erasures.
func (r *Recorder) GroupRecovered(erasures int) {
	if r == nil || r.groupsRecovered == nil {
		return
	}
	r.groupsRecovered.WithLabelValues(strconv.Itoa(erasures)).Inc()
}

// GroupSkipped records a group recover() declined to touch because it was
// unrecoverable. Groups with no data missing are not counted.
func (r *Recorder) GroupSkipped() {
	if r == nil || r.groupsSkipped == nil {
		return
	}
	r.groupsSkipped.Inc()
}

// DecodeFailed records a failed recover attempt on group.
func (r *Recorder) DecodeFailed(group uint64) {
	if r == nil || r.decodeFailures == nil {
		return
	}
	r.decodeFailures.WithLabelValues(groupLabel(group)).Inc()
}
