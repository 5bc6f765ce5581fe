package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/logger"
)

// Collector periodically refreshes device metrics into Prometheus
// gauges and sweeps expired snapshots out of the device cache.
type Collector struct {
	manager       *gpu.Manager
	interval      time.Duration
	sweepInterval time.Duration
	stop          chan struct{}
}

// NewCollector creates a new metrics collector polling manager every interval.
func NewCollector(manager *gpu.Manager, interval, sweepInterval time.Duration) *Collector {
	return &Collector{
		manager:       manager,
		interval:      interval,
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
	}
}

// Start begins the collection loop. It blocks until Stop is called or
// ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	sweep := time.NewTicker(c.sweepInterval)
	defer sweep.Stop()

	// Collect initial metrics
	c.collect(ctx)

	for {
		select {
		case <-ticker.C:
			c.collect(ctx)
		case <-sweep.C:
			if removed := c.manager.CleanupCache(); removed > 0 {
				DeviceCacheEvictions.Add(float64(removed))
				logger.Debug("swept expired device snapshots", "removed", removed)
			}
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector
func (c *Collector) Stop() {
	close(c.stop)
}

func (c *Collector) collect(ctx context.Context) {
	c.collectDevices(ctx)
	c.collectCacheStats()
}

func (c *Collector) collectDevices(ctx context.Context) {
	GPUDevices.Set(float64(c.manager.Count()))

	for _, dev := range c.manager.Devices() {
		fresh, err := c.manager.DeviceCached(dev.Index)
		if err != nil {
			logger.WarnContext(ctx, "device metric query failed",
				"index", dev.Index, "vendor", dev.Vendor.String(), "error", err)
			DeviceQueryErrors.WithLabelValues(dev.Vendor.String()).Inc()
			MetricsCollectionErrors.WithLabelValues("devices").Inc()
			continue
		}
		labels := []string{strconv.Itoa(fresh.Index), fresh.Name, fresh.Vendor.String()}
		if fresh.Temperature != nil {
			GPUTemperature.WithLabelValues(labels...).Set(*fresh.Temperature)
		}
		if fresh.Utilization != nil {
			GPUUtilization.WithLabelValues(labels...).Set(*fresh.Utilization)
		}
		if fresh.PowerDraw != nil {
			GPUPowerDraw.WithLabelValues(labels...).Set(*fresh.PowerDraw)
		}
		if fresh.CoreClock != nil {
			GPUCoreClock.WithLabelValues(labels...).Set(float64(*fresh.CoreClock))
		}
		if fresh.MemoryUsed != nil {
			GPUMemoryUsed.WithLabelValues(labels...).Set(float64(*fresh.MemoryUsed))
		}
		if fresh.MemoryTotal != nil {
			GPUMemoryTotal.WithLabelValues(labels...).Set(float64(*fresh.MemoryTotal))
		}
	}
}

func (c *Collector) collectCacheStats() {
	stats := c.manager.CacheStats()
	DeviceCacheEntries.Set(float64(stats.TotalEntries))
	DeviceCacheAccesses.Set(float64(stats.TotalAccesses))
}
