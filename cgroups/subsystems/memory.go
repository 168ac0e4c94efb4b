package subsystems

import (
	"strconv"
)

// MemController 设置内存限制
type MemController struct {
	controller
}

var _ Controller = &MemController{}

func NewMemController(base, root string, v2 bool) *MemController {
	return &MemController{controller{kind: Mem, base: base, root: root, v2: v2}}
}

func (s *MemController) Apply(res *Resources) error {
	if res == nil || res.Memory.Limit == 0 {
		return nil
	}
	if s.v2 {
		return s.writeFile("memory.max", limitString(res.Memory.Limit))
	}
	return s.writeFile("memory.limit_in_bytes", strconv.FormatInt(res.Memory.Limit, 10))
}

// limitString 把 -1 转为 v2 的 "max"
func limitString(l int64) string {
	if l < 0 {
		return "max"
	}
	return strconv.FormatInt(l, 10)
}
