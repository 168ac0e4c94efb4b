package constant

// cgroup 目录和控制文件的权限
const (
	Perm0755 = 0o755 // cgroup 目录
	Perm0644 = 0o644 // 控制文件以及日志文件
)
