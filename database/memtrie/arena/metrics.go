// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package arena

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeAllocsCountGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "memtrie",
		Subsystem: "arena",
		Name:      "active_allocs_count",
		Help:      "Number of live allocations in trie arenas",
	}, []string{"arena_name"})

	activeAllocsBytesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "memtrie",
		Subsystem: "arena",
		Name:      "active_allocs_bytes",
		Help:      "Number of bytes reserved by live allocations in trie arenas",
	}, []string{"arena_name"})

	memoryUsageGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "memtrie",
		Subsystem: "arena",
		Name:      "memory_usage_bytes",
		Help:      "Number of bytes held by the chunks of mutable trie arenas",
	}, []string{"arena_name"})
)

// arenaNames counts the unreleased allocators per arena name. The gauges of
// a name are removed when its last allocator is released, so short lived
// uniquely named forks do not accumulate label values.
var arenaNames = struct {
	mutex sync.Mutex
	users map[string]int
}{users: map[string]int{}}

// allocatorMetrics are the gauges an allocator reports to. Allocators
// sharing a name share their gauges; every allocator only adds and removes
// its own contributions.
type allocatorMetrics struct {
	name              string
	activeAllocsCount prometheus.Gauge
	activeAllocsBytes prometheus.Gauge
	memoryUsage       prometheus.Gauge
}

func newAllocatorMetrics(name string) allocatorMetrics {
	arenaNames.mutex.Lock()
	defer arenaNames.mutex.Unlock()
	arenaNames.users[name]++
	return allocatorMetrics{
		name:              name,
		activeAllocsCount: activeAllocsCountGauge.WithLabelValues(name),
		activeAllocsBytes: activeAllocsBytesGauge.WithLabelValues(name),
		memoryUsage:       memoryUsageGauge.WithLabelValues(name),
	}
}

func (m allocatorMetrics) allocated(size int) {
	m.activeAllocsCount.Inc()
	m.activeAllocsBytes.Add(float64(size))
}

func (m allocatorMetrics) deallocated(size int) {
	m.activeAllocsCount.Dec()
	m.activeAllocsBytes.Sub(float64(size))
}

func (m allocatorMetrics) grown(size int) {
	m.memoryUsage.Add(float64(size))
}

// released withdraws the remaining contributions of an allocator. It must be
// called at most once per allocator.
func (m allocatorMetrics) released(allocs, allocsBytes, memoryUsage int) {
	arenaNames.mutex.Lock()
	defer arenaNames.mutex.Unlock()
	m.activeAllocsCount.Sub(float64(allocs))
	m.activeAllocsBytes.Sub(float64(allocsBytes))
	m.memoryUsage.Sub(float64(memoryUsage))
	if arenaNames.users[m.name]--; arenaNames.users[m.name] > 0 {
		return
	}
	delete(arenaNames.users, m.name)
	activeAllocsCountGauge.DeleteLabelValues(m.name)
	activeAllocsBytesGauge.DeleteLabelValues(m.name)
	memoryUsageGauge.DeleteLabelValues(m.name)
}
