package subsystems

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// ControllerKind 标识一个资源控制器
type ControllerKind int

const (
	Pids ControllerKind = iota
	Mem
	CpuSet
	CpuAcct
	Cpu
	Devices
	Freezer
	NetCls
	BlkIo
	PerfEvent
	NetPrio
	HugeTlb
	Rdma
	Systemd
)

// String 返回 v1 挂载选项中控制器的名字
func (k ControllerKind) String() string {
	switch k {
	case Pids:
		return "pids"
	case Mem:
		return "memory"
	case CpuSet:
		return "cpuset"
	case CpuAcct:
		return "cpuacct"
	case Cpu:
		return "cpu"
	case Devices:
		return "devices"
	case Freezer:
		return "freezer"
	case NetCls:
		return "net_cls"
	case BlkIo:
		return "blkio"
	case PerfEvent:
		return "perf_event"
	case NetPrio:
		return "net_prio"
	case HugeTlb:
		return "hugetlb"
	case Rdma:
		return "rdma"
	case Systemd:
		return "name=systemd"
	default:
		return "invalid"
	}
}

// Controller 是所有具体控制器的公共接口
type Controller interface {
	// 返回控制器类型
	Kind() ControllerKind
	// hierarchy 的挂载点
	Base() string
	// mountinfo 中的挂载根目录，v2 为空
	MountRoot() string
	// cgroup 相对于挂载点的路径
	Path() string
	SetPath(p string)
	V2() bool
	// 只处理和自己相关的配置，没有相关配置时不做任何 I/O
	Apply(res *Resources) error
}

// Subsystem 是某个已挂载控制器的句柄
type Subsystem struct {
	Controller
}

// NewSubsystem 包装控制器 c
func NewSubsystem(c Controller) Subsystem {
	return Subsystem{Controller: c}
}

// Dir 返回当前路径下控制器文件所在的目录
func (s Subsystem) Dir() string {
	return filepath.Join(s.Base(), s.Path())
}

// Of 按类型取出控制器，s 的类型不是 kind 时返回 ErrKindMismatch
func (s Subsystem) Of(kind ControllerKind) (Controller, error) {
	if s.Controller == nil {
		return nil, errors.Wrapf(ErrKindMismatch, "empty subsystem, want %s", kind)
	}
	if s.Kind() != kind {
		return nil, errors.Wrapf(ErrKindMismatch, "subsystem is %s, want %s", s.Kind(), kind)
	}
	return s.Controller, nil
}

// ControllerOf 先按 kind 检查，再转换为具体的控制器类型
// 多个 kind 可能共用同一个 Go 类型（例如 PassiveController），所以 kind 必须给出
func ControllerOf[T Controller](s Subsystem, kind ControllerKind) (T, error) {
	var zero T
	c, err := s.Of(kind)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, errors.Wrapf(ErrKindMismatch, "%s controller is %T", kind, c)
	}
	return t, nil
}

// Devices 返回 devices 控制器
func (s Subsystem) Devices() (*DevicesController, error) {
	return ControllerOf[*DevicesController](s, Devices)
}

// Resources 为需要应用到 cgroup 的全部配置
type Resources struct {
	CPU     CPUResources    `yaml:"cpu"`
	Memory  MemoryResources `yaml:"memory"`
	Pids    PidResources    `yaml:"pids"`
	Devices DeviceResources `yaml:"devices"`
}

// CPUResources 为 cpu 和 cpuset 的配置
type CPUResources struct {
	// cpu 权重 (cpu.shares)
	Shares uint64 `yaml:"shares"`
	// cpu 时间片限制，单位为一个 cpu 的百分比
	Quota int `yaml:"quota"`
	// cpu 亲合度
	Cpus string `yaml:"cpus"`
	Mems string `yaml:"mems"`
}

// MemoryResources 内存限制，-1 表示不限制
type MemoryResources struct {
	Limit int64 `yaml:"limit"`
}

// PidResources 进程数限制，-1 表示不限制
type PidResources struct {
	Max int64 `yaml:"max"`
}

// DeviceResources 为有序的设备规则，写入内核时保持原有顺序
type DeviceResources []DeviceResource
