package stats

import (
	"time"

	"github.com/lufia/iostat"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oceanfreight/blockvoyage/cmn"
	"github.com/oceanfreight/blockvoyage/cmn/nlog"
)

// IOHealth samples local disk I/O as a lightweight health signal for the
// ingestion backend reading voxel-cache blobs off local disk.
type IOHealth struct {
	readBytes  prometheus.Gauge
	writeBytes prometheus.Gauge
}

// NewIOHealth registers the disk I/O gauges against reg.
func NewIOHealth(reg prometheus.Registerer) *IOHealth {
	h := &IOHealth{
		readBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "disk_read_bytes_total",
			Help:      "Cumulative bytes read from local disk, sampled from iostat drive counters.",
		}),
		writeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "blockvoyage",
			Name:      "disk_write_bytes_total",
			Help:      "Cumulative bytes written to local disk, sampled from iostat drive counters.",
		}),
	}
	reg.MustRegister(h.readBytes, h.writeBytes)
	return h
}

// Sample reads the current drive counters once and updates the gauges.
func (h *IOHealth) Sample() error {
	drives, err := iostat.ReadDriveStats()
	if err != nil {
		return cmn.Wrap(err, "stats: read drive stats")
	}
	var readBytes, writeBytes uint64
	for _, d := range drives {
		readBytes += uint64(d.BytesRead)
		writeBytes += uint64(d.BytesWritten)
	}
	h.readBytes.Set(float64(readBytes))
	h.writeBytes.Set(float64(writeBytes))
	return nil
}

// Run samples on interval until stop is closed, logging (not failing) on
// transient sample errors since I/O health is advisory, not load-bearing.
func (h *IOHealth) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := h.Sample(); err != nil {
				nlog.Warningf("stats: io sample failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}
