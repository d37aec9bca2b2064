package main

import (
	"github.com/nblockd/pagecached/internal/device"
	"github.com/prometheus/client_golang/prometheus"
)

// statsCollector adapts a device.Stats snapshot to the prometheus
// Collector interface, so the counters and bytes tracked by the Device
// are scraped directly rather than mirrored into a second set of
// prometheus-native counters.
type statsCollector struct {
	dev *device.Device

	reads      *prometheus.Desc
	writes     *prometheus.Desc
	errors     *prometheus.Desc
	bytesRead  *prometheus.Desc
	bytesWrite *prometheus.Desc
	evictions  *prometheus.Desc
	loads      *prometheus.Desc
	flushes    *prometheus.Desc
}

func newStatsCollector(dev *device.Device) *statsCollector {
	ns := "pagecached"
	return &statsCollector{
		dev:        dev,
		reads:      prometheus.NewDesc(ns+"_reads_total", "Number of Device.Read calls.", nil, nil),
		writes:     prometheus.NewDesc(ns+"_writes_total", "Number of Device.Write calls.", nil, nil),
		errors:     prometheus.NewDesc(ns+"_errors_total", "Number of failed Device operations.", nil, nil),
		bytesRead:  prometheus.NewDesc(ns+"_bytes_read_total", "Bytes returned by Device.Read.", nil, nil),
		bytesWrite: prometheus.NewDesc(ns+"_bytes_written_total", "Bytes accepted by Device.Write.", nil, nil),
		evictions:  prometheus.NewDesc(ns+"_evictions_total", "Number of completed idle-eviction sweeps.", nil, nil),
		loads:      prometheus.NewDesc(ns+"_loads_total", "Number of cache-miss backend loads.", nil, nil),
		flushes:    prometheus.NewDesc(ns+"_flushes_total", "Number of Device.Flush calls.", nil, nil),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.reads
	ch <- c.writes
	ch <- c.errors
	ch <- c.bytesRead
	ch <- c.bytesWrite
	ch <- c.evictions
	ch <- c.loads
	ch <- c.flushes
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.dev.Stats.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.reads, prometheus.CounterValue, float64(s.Reads))
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue, float64(s.Writes))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(s.Errors))
	ch <- prometheus.MustNewConstMetric(c.bytesRead, prometheus.CounterValue, float64(s.BytesRead))
	ch <- prometheus.MustNewConstMetric(c.bytesWrite, prometheus.CounterValue, float64(s.BytesWrite))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.loads, prometheus.CounterValue, float64(c.dev.LoadCount()))
	ch <- prometheus.MustNewConstMetric(c.flushes, prometheus.CounterValue, float64(s.Flushes))
}

var _ prometheus.Collector = (*statsCollector)(nil)
