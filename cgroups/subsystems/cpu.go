package subsystems

import (
	"strconv"
)

const (
	PeriodDefault = 100000
	Percent       = 100
)

// CpuController 设置 cpu 权重和 cpu 时间片限制
type CpuController struct {
	controller
}

var _ Controller = &CpuController{}

func NewCpuController(base, root string, v2 bool) *CpuController {
	return &CpuController{controller{kind: Cpu, base: base, root: root, v2: v2}}
}

func (s *CpuController) Apply(res *Resources) error {
	// 如果没有包含 cpu 子系统相关的修改，则返回 nil
	if res == nil || (res.CPU.Quota == 0 && res.CPU.Shares == 0) {
		return nil
	}
	cfg := res.CPU

	if cfg.Shares != 0 {
		if s.v2 {
			if err := s.writeFile("cpu.weight", strconv.FormatUint(sharesToWeight(cfg.Shares), 10)); err != nil {
				return err
			}
		} else if err := s.writeFile("cpu.shares", strconv.FormatUint(cfg.Shares, 10)); err != nil {
			return err
		}
	}

	if cfg.Quota != 0 {
		quota := PeriodDefault / Percent * cfg.Quota
		if s.v2 {
			return s.writeFile("cpu.max", strconv.Itoa(quota)+" "+strconv.Itoa(PeriodDefault))
		}
		if err := s.writeFile("cpu.cfs_period_us", strconv.Itoa(PeriodDefault)); err != nil {
			return err
		}
		if err := s.writeFile("cpu.cfs_quota_us", strconv.Itoa(quota)); err != nil {
			return err
		}
	}
	return nil
}

// sharesToWeight 把 cpu.shares [2, 262144] 映射到 cpu.weight [1, 10000]
func sharesToWeight(shares uint64) uint64 {
	if shares < 2 {
		shares = 2
	}
	if shares > 262144 {
		shares = 262144
	}
	return 1 + ((shares-2)*9999)/262142
}
