package telemetry

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("scrappey-go/lib/telemetry")
var cpuGauge, _ = meter.Float64Gauge("process.cpu_usage")
var rssGauge, _ = meter.Int64Gauge("process.rss_mb")
var heapGauge, _ = meter.Int64Gauge("process.heap_mb")
var goroutineGauge, _ = meter.Int64Gauge("process.goroutines")

type PerfStats struct {
	CpuPercent float64
	RssMb      int64
	HeapMb     int64
	Goroutines int64
}

// SamplePerfStats reads the current resource usage of this process, cpu usage
// is measured since the previous sample of the same process.
func SamplePerfStats(ctx context.Context, proc *process.Process) (PerfStats, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats := PerfStats{
		HeapMb:     int64(memStats.HeapAlloc / 1_000_000),
		Goroutines: int64(runtime.NumGoroutine()),
	}

	cpu, err := proc.PercentWithContext(ctx, 0)
	if err != nil {
		return stats, err
	}
	stats.CpuPercent = cpu

	mem, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return stats, err
	}
	stats.RssMb = int64(mem.RSS / 1_000_000)
	return stats, nil
}

// InstrumentPerfStats records the process gauges every `interval` until ctx
// is done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		slog.WarnContext(ctx, "perf stats disabled", "err", err)
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats, err := SamplePerfStats(ctx, proc)
				if err != nil {
					slog.DebugContext(ctx, "failed to read process stats", "err", err)
					continue
				}
				cpuGauge.Record(ctx, stats.CpuPercent)
				rssGauge.Record(ctx, stats.RssMb)
				heapGauge.Record(ctx, stats.HeapMb)
				goroutineGauge.Record(ctx, stats.Goroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}
