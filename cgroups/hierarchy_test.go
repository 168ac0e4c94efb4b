package cgroups

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cgctl/cgroups/subsystems"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMountInfo = `22 1 8:1 / / rw,relatime shared:1 - ext4 /dev/sda1 rw
25 22 0:22 / /sys/fs/cgroup ro,nosuid,nodev,noexec shared:9 - tmpfs tmpfs ro,mode=755
26 25 0:23 / /sys/fs/cgroup/unified rw,nosuid,nodev,noexec,relatime shared:10 - cgroup2 cgroup2 rw,nsdelegate
27 25 0:24 / /sys/fs/cgroup/systemd rw,nosuid,nodev,noexec,relatime shared:11 - cgroup cgroup rw,xattr,name=systemd
30 25 0:27 / /sys/fs/cgroup/memory rw,nosuid,nodev,noexec,relatime shared:14 - cgroup cgroup rw,memory
31 25 0:28 / /sys/fs/cgroup/cpu,cpuacct rw,nosuid,nodev,noexec,relatime shared:15 - cgroup cgroup rw,cpu,cpuacct
32 25 0:29 / /sys/fs/cgroup/devices rw,nosuid,nodev,noexec,relatime shared:16 - cgroup cgroup rw,devices
this line is not a mount
33 25 0:30 / /sys/fs/cgroup/blkio rw,nosuid,nodev,noexec,relatime shared:17 - cgroup cgroup rw,blkio
34 25 0:31 / /sys/fs/cgroup/pids rw,nosuid,nodev,noexec,relatime shared:18 - cgroup cgroup rw,pids
`

func kinds(subs []subsystems.Subsystem) []subsystems.ControllerKind {
	ks := make([]subsystems.ControllerKind, 0, len(subs))
	for _, s := range subs {
		ks = append(ks, s.Kind())
	}
	return ks
}

func indexOf(ks []subsystems.ControllerKind, k subsystems.ControllerKind) int {
	for i, v := range ks {
		if v == k {
			return i
		}
	}
	return -1
}

func TestV1Mounts(t *testing.T) {
	h, err := NewV1FromReader(strings.NewReader(testMountInfo))
	require.NoError(t, err)
	assert.False(t, h.V2())
	// cgroup2 and tmpfs mounts are not part of the v1 snapshot
	assert.Len(t, h.Mounts(), 6)

	point, root, ok := h.MountPoint(subsystems.CpuAcct)
	assert.True(t, ok)
	assert.Equal(t, "/sys/fs/cgroup/cpu,cpuacct", point)
	assert.Equal(t, "/", root)

	point, _, ok = h.MountPoint(subsystems.Systemd)
	assert.True(t, ok)
	assert.Equal(t, "/sys/fs/cgroup/systemd", point)

	_, _, ok = h.MountPoint(subsystems.Rdma)
	assert.False(t, ok)

	r, err := h.Root()
	require.NoError(t, err)
	assert.Equal(t, "/sys/fs/cgroup", r)
}

func TestV1Subsystems(t *testing.T) {
	h, err := NewV1FromReader(strings.NewReader(testMountInfo))
	require.NoError(t, err)

	subs := h.Subsystems()
	assert.Equal(t, []subsystems.ControllerKind{
		subsystems.BlkIo,
		subsystems.Mem,
		subsystems.Pids,
		subsystems.CpuAcct,
		subsystems.Cpu,
		subsystems.Devices,
		subsystems.Systemd,
	}, kinds(subs))

	for _, s := range subs {
		assert.False(t, s.V2())
		assert.Equal(t, "", s.Path())
	}

	ks := kinds(subs)
	assert.Less(t, indexOf(ks, subsystems.BlkIo), indexOf(ks, subsystems.Mem))

	d, err := subs[indexOf(ks, subsystems.Devices)].Devices()
	require.NoError(t, err)
	assert.Equal(t, "/sys/fs/cgroup/devices", d.Base())
	assert.Equal(t, "/", d.MountRoot())

	_, err = subs[indexOf(ks, subsystems.Mem)].Devices()
	assert.True(t, errors.Is(err, subsystems.ErrKindMismatch))
}

func TestV1BlkIoBeforeMemory(t *testing.T) {
	// memory is listed first in the mount table, blkio still comes first
	const mi = `30 25 0:27 / /sys/fs/cgroup/memory rw - cgroup cgroup rw,memory
33 25 0:30 / /sys/fs/cgroup/blkio rw - cgroup cgroup rw,blkio
`
	h, err := NewV1FromReader(strings.NewReader(mi))
	require.NoError(t, err)
	assert.Equal(t, []subsystems.ControllerKind{subsystems.BlkIo, subsystems.Mem}, kinds(h.Subsystems()))
}

func TestV1Empty(t *testing.T) {
	h, err := NewV1FromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, h.Subsystems())

	_, err = h.Root()
	assert.True(t, errors.Is(err, ErrNoCgroupMount))
}

func TestV1SnapshotIsCopied(t *testing.T) {
	h, err := NewV1FromReader(strings.NewReader(testMountInfo))
	require.NoError(t, err)
	m := h.Mounts()
	m[0].MountPoint = "/elsewhere"
	assert.NotEqual(t, "/elsewhere", h.Mounts()[0].MountPoint)
}

func TestV2Subsystems(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, cgroupControllers),
		[]byte("cpuset cpu io memory hugetlb pids rdma misc\n"), 0o444))

	h := NewV2At(root)
	assert.True(t, h.V2())
	r, err := h.Root()
	require.NoError(t, err)
	assert.Equal(t, root, r)

	subs := h.Subsystems()
	assert.Equal(t, []subsystems.ControllerKind{
		subsystems.CpuSet,
		subsystems.Cpu,
		subsystems.BlkIo,
		subsystems.Mem,
		subsystems.HugeTlb,
		subsystems.Pids,
		subsystems.Freezer,
	}, kinds(subs))
	for _, s := range subs {
		assert.True(t, s.V2())
		assert.Equal(t, root, s.Base())
		assert.Equal(t, "", s.Path())
	}
	freezer := subs[len(subs)-1]
	_, err = freezer.Of(subsystems.Freezer)
	assert.NoError(t, err)
	_, err = freezer.Of(subsystems.BlkIo)
	assert.True(t, errors.Is(err, subsystems.ErrKindMismatch))
}

func TestV2FreezerOnly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, cgroupControllers), []byte("\n"), 0o444))
	assert.Equal(t, []subsystems.ControllerKind{subsystems.Freezer}, kinds(NewV2At(root).Subsystems()))
}

func TestV2NoControllersFile(t *testing.T) {
	assert.Empty(t, NewV2At(t.TempDir()).Subsystems())
}

func TestIsUnifiedAt(t *testing.T) {
	assert.False(t, isUnifiedAt(filepath.Join(t.TempDir(), "missing")))
	// a temp dir is never a cgroup2 mount
	assert.False(t, isUnifiedAt(t.TempDir()))
}

func TestAuto(t *testing.T) {
	h := Auto()
	assert.Equal(t, IsCgroup2UnifiedMode(), h.V2())
	if h.V2() {
		assert.Equal(t, "v2", Mode(h))
	} else {
		assert.Equal(t, "v1", Mode(h))
	}
}
