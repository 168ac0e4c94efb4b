package cgroups

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"cgctl/cgroups/subsystems"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	UnifiedMountpoint = "/sys/fs/cgroup"
	mountInfoPath     = "/proc/self/mountinfo"
	cgroupControllers = "cgroup.controllers"
	cgroupFsType      = "cgroup"
)

// 挂载表中没有 cgroup 挂载点时 V1.Root 返回 ErrNoCgroupMount
var ErrNoCgroupMount = errors.New("no cgroup mount found")

// Hierarchy 是 cgroup 控制器的挂载方式，v1 每个控制器一个挂载点，v2 只有一个统一挂载点
type Hierarchy interface {
	// 是否为 v2 统一挂载
	V2() bool
	// 当前内核上的控制器，按应用配置的顺序
	Subsystems() []subsystems.Subsystem
	// hierarchy 挂载所在的目录
	Root() (string, error)
}

// IsCgroup2UnifiedMode 判断 /sys/fs/cgroup 是否为 cgroup2 挂载
func IsCgroup2UnifiedMode() bool {
	return isUnifiedAt(UnifiedMountpoint)
}

func isUnifiedAt(p string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(p, &st); err != nil {
		// 无法判断时当作 v1
		log.WithError(err).Debugf("statfs(%q) failed, assuming cgroup v1", p)
		return false
	}
	return st.Type == unix.CGROUP2_SUPER_MAGIC
}

// Auto 返回当前内核使用的 hierarchy
func Auto() Hierarchy {
	if IsCgroup2UnifiedMode() {
		return NewV2()
	}
	return NewV1()
}

// Mode 返回 v1 或 v2
func Mode(h Hierarchy) string {
	if h.V2() {
		return "v2"
	}
	return "v1"
}

// V1 每个控制器一个挂载点，挂载表只在创建时读取一次
type V1 struct {
	mounts []MountInfo
}

var _ Hierarchy = &V1{}

// NewV1 读取当前进程的 cgroup 挂载，挂载表无法读取时返回没有控制器的 hierarchy
func NewV1() *V1 {
	f, err := os.Open(mountInfoPath)
	if err != nil {
		log.Warnf("open %s: %v", mountInfoPath, err)
		return &V1{}
	}
	defer f.Close()

	v1, err := NewV1FromReader(f)
	if err != nil {
		log.Warnf("read %s: %v", mountInfoPath, err)
	}
	return v1
}

// NewV1FromReader 从 mountinfo 内容创建 V1，读取出错时保留已解析的挂载并同时返回错误
func NewV1FromReader(r io.Reader) (*V1, error) {
	mounts, err := readCgroupMounts(r)
	return &V1{mounts: mounts}, err
}

// Mounts 按挂载表顺序返回 cgroup 挂载
func (h *V1) Mounts() []MountInfo {
	return append([]MountInfo(nil), h.mounts...)
}

func (h *V1) V2() bool { return false }

// MountPoint 返回第一个带有 kind 选项的挂载的挂载点和挂载根目录
func (h *V1) MountPoint(kind subsystems.ControllerKind) (point, root string, ok bool) {
	tag := kind.String()
	for _, m := range h.mounts {
		if m.HasOption(tag) {
			return m.MountPoint, m.MountRoot, true
		}
	}
	return "", "", false
}

type v1Constructor func(point, root string) subsystems.Controller

func passive(kind subsystems.ControllerKind) v1Constructor {
	return func(point, root string) subsystems.Controller {
		return subsystems.NewPassiveController(kind, point, root, false)
	}
}

// v1Controllers 决定 Subsystems 的顺序。
// blkio 必须在 memory 之前：cgroup writeback 需要 blkcg 先于 memcg 关联进程。
var v1Controllers = []struct {
	kind  subsystems.ControllerKind
	build v1Constructor
}{
	{subsystems.BlkIo, passive(subsystems.BlkIo)},
	{subsystems.Mem, func(p, r string) subsystems.Controller { return subsystems.NewMemController(p, r, false) }},
	{subsystems.Pids, func(p, r string) subsystems.Controller { return subsystems.NewPidController(p, r, false) }},
	{subsystems.CpuSet, func(p, r string) subsystems.Controller { return subsystems.NewCpuSetController(p, r, false) }},
	{subsystems.CpuAcct, passive(subsystems.CpuAcct)},
	{subsystems.Cpu, func(p, r string) subsystems.Controller { return subsystems.NewCpuController(p, r, false) }},
	{subsystems.Devices, func(p, r string) subsystems.Controller { return subsystems.NewDevicesController(p, r) }},
	{subsystems.Freezer, passive(subsystems.Freezer)},
	{subsystems.NetCls, passive(subsystems.NetCls)},
	{subsystems.PerfEvent, passive(subsystems.PerfEvent)},
	{subsystems.NetPrio, passive(subsystems.NetPrio)},
	{subsystems.HugeTlb, passive(subsystems.HugeTlb)},
	{subsystems.Rdma, passive(subsystems.Rdma)},
	{subsystems.Systemd, passive(subsystems.Systemd)},
}

func (h *V1) Subsystems() []subsystems.Subsystem {
	var subs []subsystems.Subsystem
	for _, c := range v1Controllers {
		point, root, ok := h.MountPoint(c.kind)
		if !ok {
			continue
		}
		subs = append(subs, subsystems.NewSubsystem(c.build(point, root)))
	}
	return subs
}

// Root 返回第一个 cgroup 挂载点的父目录
func (h *V1) Root() (string, error) {
	if len(h.mounts) == 0 {
		return "", ErrNoCgroupMount
	}
	return filepath.Dir(h.mounts[0].MountPoint), nil
}

// V2 为统一挂载，不保存快照，每次调用都读取内核
type V2 struct {
	root string
}

var _ Hierarchy = &V2{}

func NewV2() *V2 {
	return NewV2At(UnifiedMountpoint)
}

// NewV2At 返回挂载在 root 的统一 hierarchy
func NewV2At(root string) *V2 {
	return &V2{root: root}
}

func (h *V2) V2() bool { return true }

func (h *V2) Root() (string, error) { return h.root, nil }

// Subsystems 按 cgroup.controllers 的顺序返回
// v2 中 freezer 是内置功能，不会出现在 cgroup.controllers 里，所以总是追加在最后
func (h *V2) Subsystems() []subsystems.Subsystem {
	p := filepath.Join(h.root, cgroupControllers)
	content, err := os.ReadFile(p)
	if err != nil {
		log.WithError(err).Debugf("read %s, no controllers available", p)
		return nil
	}

	names := strings.Split(strings.TrimSpace(string(content)), " ")
	names = append(names, "freezer")

	var subs []subsystems.Subsystem
	for _, name := range names {
		var c subsystems.Controller
		switch name {
		case "cpu":
			c = subsystems.NewCpuController(h.root, "", true)
		case "io":
			c = subsystems.NewPassiveController(subsystems.BlkIo, h.root, "", true)
		case "cpuset":
			c = subsystems.NewCpuSetController(h.root, "", true)
		case "memory":
			c = subsystems.NewMemController(h.root, "", true)
		case "pids":
			c = subsystems.NewPidController(h.root, "", true)
		case "freezer":
			c = subsystems.NewPassiveController(subsystems.Freezer, h.root, "", true)
		case "hugetlb":
			c = subsystems.NewPassiveController(subsystems.HugeTlb, h.root, "", true)
		default:
			continue
		}
		subs = append(subs, subsystems.NewSubsystem(c))
	}
	return subs
}
