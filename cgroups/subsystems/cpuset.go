package subsystems

// CpuSetController 设置 cpu 亲合度
type CpuSetController struct {
	controller
}

var _ Controller = &CpuSetController{}

func NewCpuSetController(base, root string, v2 bool) *CpuSetController {
	return &CpuSetController{controller{kind: CpuSet, base: base, root: root, v2: v2}}
}

func (s *CpuSetController) Apply(res *Resources) error {
	if res == nil || (res.CPU.Cpus == "" && res.CPU.Mems == "") {
		return nil
	}
	// cpuset.mems 为空时 v1 不允许加入进程，所以先写 mems
	if res.CPU.Mems != "" {
		if err := s.writeFile("cpuset.mems", res.CPU.Mems); err != nil {
			return err
		}
	}
	if res.CPU.Cpus != "" {
		return s.writeFile("cpuset.cpus", res.CPU.Cpus)
	}
	return nil
}
