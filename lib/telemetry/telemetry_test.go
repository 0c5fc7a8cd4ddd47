package telemetry

import (
	"context"
	"os"
	"testing"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutExporters(t *testing.T) {
	tel, err := Setup(context.Background(), "test:telemetry", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestOtlpConnConfigEnabled(t *testing.T) {
	require.False(t, OtlpConnConfig{}.Enabled())
	require.True(t, OtlpConnConfig{HttpEndpoint: "http://localhost:4318"}.Enabled())
	require.True(t, OtlpConnConfig{GrpcEndpoint: "http://localhost:4317"}.Enabled())
}

func TestSamplePerfStats(t *testing.T) {
	ctx := context.Background()
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	require.NoError(t, err)

	stats, err := SamplePerfStats(ctx, proc)
	require.NoError(t, err)
	require.Greater(t, stats.Goroutines, int64(0))
	require.GreaterOrEqual(t, stats.CpuPercent, float64(0))
}
