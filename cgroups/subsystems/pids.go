package subsystems

// PidController 限制 cgroup 中的进程数
type PidController struct {
	controller
}

var _ Controller = &PidController{}

func NewPidController(base, root string, v2 bool) *PidController {
	return &PidController{controller{kind: Pids, base: base, root: root, v2: v2}}
}

func (s *PidController) Apply(res *Resources) error {
	if res == nil || res.Pids.Max == 0 {
		return nil
	}
	return s.writeFile("pids.max", limitString(res.Pids.Max))
}
