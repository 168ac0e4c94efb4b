package subsystems

import (
	"os"
	"path/filepath"
	"syscall"

	"cgctl/constant"

	"github.com/pkg/errors"
)

// controller 保存所有控制器共有的路径信息
type controller struct {
	kind ControllerKind
	// hierarchy 挂载点，例如 /sys/fs/cgroup/devices
	base string
	// mountinfo 第四列
	root string
	// cgroup 相对于 base 的路径
	path string
	v2   bool
}

func (c *controller) Kind() ControllerKind { return c.kind }
func (c *controller) Base() string         { return c.base }
func (c *controller) MountRoot() string    { return c.root }
func (c *controller) Path() string         { return c.path }
func (c *controller) SetPath(p string)     { c.path = p }
func (c *controller) V2() bool             { return c.v2 }

// file 返回 base/path/name
func (c *controller) file(name string) string {
	return filepath.Join(c.base, c.path, name)
}

// readFile 读取整个控制文件
func (c *controller) readFile(name string) ([]byte, error) {
	p := c.file(name)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &ReadFailedError{Path: p, Err: err}
	}
	return data, nil
}

// writeFile 覆盖写入控制文件
func (c *controller) writeFile(name, payload string) error {
	return c.write(name, payload, os.O_WRONLY|os.O_TRUNC)
}

// appendFile 以追加方式一次写入一条记录，记录末尾加换行
// devices.allow 和 devices.deny 每次写入只接受一条规则
func (c *controller) appendFile(name, record string) error {
	return c.write(name, record, os.O_WRONLY|os.O_APPEND)
}

func (c *controller) write(name, payload string, flag int) error {
	p := c.file(name)
	f, err := os.OpenFile(p, flag, constant.Perm0644)
	if err != nil {
		return &WriteFailedError{Path: p, Payload: payload, Err: err}
	}
	defer f.Close()

	b := []byte(payload)
	if flag&os.O_APPEND != 0 {
		b = append(b, '\n')
	}
	_, err = f.Write(b)
	for err != nil && errors.Is(err, syscall.EINTR) {
		_, err = f.Write(b)
	}
	if err != nil {
		return &WriteFailedError{Path: p, Payload: payload, Err: err}
	}
	return nil
}

// EnsureDir 确保 cgroup 目录存在，不存在则创建
func EnsureDir(s Subsystem) error {
	dir := s.Dir()
	_, err := os.Stat(dir)
	if err != nil && os.IsNotExist(err) {
		return errors.Wrapf(os.MkdirAll(dir, constant.Perm0755), "create cgroup %s", dir)
	}
	// 其他错误或者没有错误都直接返回，如果 err == nil，那么 errors.Wrap(err, "") 也会是 nil
	return errors.Wrap(err, "stat cgroup")
}

// Remove 删除 cgroup 目录，根 cgroup 不会被删除
func Remove(s Subsystem) error {
	if s.Path() == "" || s.Path() == "/" {
		return nil
	}
	err := os.Remove(s.Dir())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove cgroup %s", s.Dir())
	}
	return nil
}
