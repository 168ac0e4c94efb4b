package cgroups

import (
	"cgctl/cgroups/subsystems"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Path 为 cgroup 相对于各个 hierarchy 挂载点的路径
type CgroupManager struct {
	Path      string
	hierarchy Hierarchy
}

func NewCgroupManager(h Hierarchy, path string) *CgroupManager {
	return &CgroupManager{
		Path:      path,
		hierarchy: h,
	}
}

// Subsystems 返回 hierarchy 中的所有控制器，路径指向 c.Path
func (c *CgroupManager) Subsystems() []subsystems.Subsystem {
	subs := c.hierarchy.Subsystems()
	for _, s := range subs {
		s.SetPath(c.Path)
	}
	return subs
}

// Set 创建 cgroup 并按 hierarchy 的顺序应用配置，遇到第一个错误即返回
func (c *CgroupManager) Set(res *subsystems.Resources) error {
	for _, s := range c.Subsystems() {
		if err := subsystems.EnsureDir(s); err != nil {
			return err
		}
		if err := s.Apply(res); err != nil {
			log.Errorf("apply subsystem: %s, err: %v", s.Kind(), err)
			return errors.Wrapf(err, "apply %s", s.Kind())
		}
	}
	return nil
}

// Destroy 删除释放 cgroup
func (c *CgroupManager) Destroy() error {
	for _, s := range c.Subsystems() {
		if err := subsystems.Remove(s); err != nil {
			log.Warnf("remove cgroup failed %v", err)
		}
	}
	return nil
}
