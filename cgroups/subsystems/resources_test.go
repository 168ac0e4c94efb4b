package subsystems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touch creates empty cgroup files under c's directory.
func touch(t *testing.T, c Controller, names ...string) {
	t.Helper()
	dir := filepath.Join(c.Base(), c.Path())
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestCpuApplyV1(t *testing.T) {
	c := NewCpuController(t.TempDir(), "/", false)
	touch(t, c, "cpu.shares", "cpu.cfs_period_us", "cpu.cfs_quota_us")

	require.NoError(t, c.Apply(&Resources{CPU: CPUResources{Shares: 512, Quota: 50}}))
	assert.Equal(t, "512", readTestFile(t, c, "cpu.shares"))
	assert.Equal(t, "100000", readTestFile(t, c, "cpu.cfs_period_us"))
	assert.Equal(t, "50000", readTestFile(t, c, "cpu.cfs_quota_us"))
}

func TestCpuApplyV2(t *testing.T) {
	c := NewCpuController(t.TempDir(), "", true)
	touch(t, c, "cpu.weight", "cpu.max")

	require.NoError(t, c.Apply(&Resources{CPU: CPUResources{Shares: 1024, Quota: 200}}))
	assert.Equal(t, "39", readTestFile(t, c, "cpu.weight"))
	assert.Equal(t, "200000 100000", readTestFile(t, c, "cpu.max"))
}

func TestSharesToWeight(t *testing.T) {
	assert.Equal(t, uint64(1), sharesToWeight(0))
	assert.Equal(t, uint64(1), sharesToWeight(2))
	assert.Equal(t, uint64(10000), sharesToWeight(262144))
	assert.Equal(t, uint64(10000), sharesToWeight(1<<20))
}

func TestCpuSetApply(t *testing.T) {
	c := NewCpuSetController(t.TempDir(), "/", false)
	touch(t, c, "cpuset.cpus", "cpuset.mems")

	require.NoError(t, c.Apply(&Resources{CPU: CPUResources{Cpus: "0-1", Mems: "0"}}))
	assert.Equal(t, "0-1", readTestFile(t, c, "cpuset.cpus"))
	assert.Equal(t, "0", readTestFile(t, c, "cpuset.mems"))
}

func TestMemApply(t *testing.T) {
	v1 := NewMemController(t.TempDir(), "/", false)
	touch(t, v1, "memory.limit_in_bytes")
	require.NoError(t, v1.Apply(&Resources{Memory: MemoryResources{Limit: 4096}}))
	assert.Equal(t, "4096", readTestFile(t, v1, "memory.limit_in_bytes"))

	v2 := NewMemController(t.TempDir(), "", true)
	touch(t, v2, "memory.max")
	require.NoError(t, v2.Apply(&Resources{Memory: MemoryResources{Limit: -1}}))
	assert.Equal(t, "max", readTestFile(t, v2, "memory.max"))
}

func TestPidApply(t *testing.T) {
	c := NewPidController(t.TempDir(), "", true)
	touch(t, c, "pids.max")
	require.NoError(t, c.Apply(&Resources{Pids: PidResources{Max: 64}}))
	assert.Equal(t, "64", readTestFile(t, c, "pids.max"))
}

func TestApplyWithoutSectionDoesNoIO(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	res := &Resources{Devices: DeviceResources{{Allow: true, Type: DeviceChar, Major: 1, Minor: 3}}}
	for _, c := range []Controller{
		NewCpuController(missing, "", true),
		NewCpuSetController(missing, "", true),
		NewMemController(missing, "", true),
		NewPidController(missing, "", true),
		NewPassiveController(Freezer, missing, "", true),
	} {
		assert.NoError(t, c.Apply(res), c.Kind().String())
	}
}

func TestWriteTruncates(t *testing.T) {
	c := NewPidController(t.TempDir(), "", true)
	touch(t, c, "pids.max")
	require.NoError(t, c.Apply(&Resources{Pids: PidResources{Max: 1024}}))
	require.NoError(t, c.Apply(&Resources{Pids: PidResources{Max: 8}}))
	assert.Equal(t, "8", readTestFile(t, c, "pids.max"))
}
