package cgroups

import (
	"bufio"
	"io"
	"strings"
)

// MountInfo 是 /proc/self/mountinfo 中的一行，格式见 proc(5)
// 例如
// 43 38 0:38 / /sys/fs/cgroup/cpu,cpuacct rw,nosuid,nodev,noexec,relatime shared:16 - cgroup cgroup rw,cpu,cpuacct
type MountInfo struct {
	// 第四列，文件系统内被挂载的目录
	MountRoot string
	// 第五列，挂载点
	MountPoint string
	// 文件系统类型，按第一个 "." 拆为主类型和子类型
	FsType    string
	FsSubType string
	// 最后一列 superblock 选项，例如 rw,cpu,cpuacct
	SuperOpts []string
}

const (
	mountRootIndex  = 3
	mountPointIndex = 4
)

// ParseMountInfo 解析一行 mountinfo，格式不符时返回 false
// 这不是错误，挂载表中本来就有很多无关的行
func ParseMountInfo(line string) (MountInfo, bool) {
	halves := strings.Split(line, " - ")
	if len(halves) != 2 {
		return MountInfo{}, false
	}
	pre := strings.Split(strings.TrimSpace(halves[0]), " ")
	post := strings.Split(strings.TrimSpace(halves[1]), " ")
	if len(pre) < 6 || len(post) < 3 {
		return MountInfo{}, false
	}

	fsType, subType, _ := strings.Cut(post[0], ".")
	if strings.Contains(subType, ".") {
		return MountInfo{}, false
	}
	return MountInfo{
		MountRoot:  pre[mountRootIndex],
		MountPoint: pre[mountPointIndex],
		FsType:     fsType,
		FsSubType:  subType,
		SuperOpts:  strings.Split(strings.TrimSpace(post[2]), ","),
	}, true
}

// HasOption 判断 opt 是否在 superblock 选项中
func (m MountInfo) HasOption(opt string) bool {
	for _, o := range m.SuperOpts {
		if o == opt {
			return true
		}
	}
	return false
}

// readCgroupMounts 返回 r 中的 v1 cgroup 挂载，读取出错前已解析的行会保留
func readCgroupMounts(r io.Reader) ([]MountInfo, error) {
	var mounts []MountInfo
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m, ok := ParseMountInfo(scanner.Text())
		if !ok || m.FsType != cgroupFsType {
			continue
		}
		mounts = append(mounts, m)
	}
	return mounts, scanner.Err()
}
