package subsystems

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	devicesAllow = "devices.allow"
	devicesDeny  = "devices.deny"
	devicesList  = "devices.list"

	// 主次设备号为 AnyDevice 时匹配所有设备
	AnyDevice int64 = -1
)

// DeviceResource 为一条 allow 或 deny 规则
type DeviceResource struct {
	Allow  bool              `yaml:"allow" json:"allow"`
	Type   DeviceType        `yaml:"type" json:"type"`
	Major  int64             `yaml:"major" json:"major"`
	Minor  int64             `yaml:"minor" json:"minor"`
	Access DevicePermissions `yaml:"access" json:"access"`
}

// CgroupString 返回写入 devices.allow 和 devices.deny 的格式
func (d DeviceResource) CgroupString() string {
	return deviceRule(d.Type, d.Major, d.Minor, d.Access)
}

func deviceRule(devtype DeviceType, major, minor int64, perms DevicePermissions) string {
	return string(devtype.Char()) + " " + deviceNumber(major) + ":" + deviceNumber(minor) + " " + perms.String()
}

func deviceNumber(n int64) string {
	if n == AnyDevice {
		return "*"
	}
	return strconv.FormatInt(n, 10)
}

func parseDeviceNumber(s string) (int64, error) {
	if s == "*" {
		return AnyDevice, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, parseErrorf("invalid device number %q", s)
	}
	return n, nil
}

// ParseDeviceRule 解析 "<type> <major>:<minor> <perms>" 为一条 allow 规则
// 空格和冒号都是分隔符，必须正好是四个字段
func ParseDeviceRule(line string) (DeviceResource, error) {
	parts := strings.Split(strings.ReplaceAll(line, ":", " "), " ")
	if len(parts) != 4 {
		return DeviceResource{}, parseErrorf("invalid device rule %q: %d fields", line, len(parts))
	}
	if len(parts[0]) != 1 {
		return DeviceResource{}, parseErrorf("invalid device type %q", parts[0])
	}
	devtype, ok := DeviceTypeFromChar(parts[0][0])
	if !ok {
		return DeviceResource{}, parseErrorf("invalid device type %q", parts[0])
	}
	major, err := parseDeviceNumber(parts[1])
	if err != nil {
		return DeviceResource{}, err
	}
	minor, err := parseDeviceNumber(parts[2])
	if err != nil {
		return DeviceResource{}, err
	}
	access, err := ParseDevicePermissions(parts[3])
	if err != nil {
		return DeviceResource{}, err
	}
	return DeviceResource{
		Allow:  true,
		Type:   devtype,
		Major:  major,
		Minor:  minor,
		Access: access,
	}, nil
}

// DevicesController 控制 cgroup 中的进程可以访问哪些设备
type DevicesController struct {
	controller
}

var _ Controller = &DevicesController{}

// NewDevicesController 返回挂载在 base 的 devices 控制器
func NewDevicesController(base, root string) *DevicesController {
	return &DevicesController{controller{kind: Devices, base: base, root: root}}
}

// Apply 按给定顺序写入所有规则，遇到第一个错误即返回
func (s *DevicesController) Apply(res *Resources) error {
	if res == nil || len(res.Devices) == 0 {
		return nil
	}
	for _, d := range res.Devices {
		var err error
		if d.Allow {
			err = s.AllowDevice(d.Type, d.Major, d.Minor, d.Access)
		} else {
			err = s.DenyDevice(d.Type, d.Major, d.Minor, d.Access)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// AllowDevice 允许访问匹配的设备
func (s *DevicesController) AllowDevice(devtype DeviceType, major, minor int64, perms DevicePermissions) error {
	return s.appendFile(devicesAllow, deviceRule(devtype, major, minor, perms))
}

// DenyDevice 禁止访问匹配的设备
func (s *DevicesController) DenyDevice(devtype DeviceType, major, minor int64, perms DevicePermissions) error {
	return s.appendFile(devicesDeny, deviceRule(devtype, major, minor, perms))
}

// AllowedDevices 读取 devices.list，任意一行格式错误都会使整个读取失败
func (s *DevicesController) AllowedDevices() ([]DeviceResource, error) {
	data, err := s.readFile(devicesList)
	if err != nil {
		return nil, err
	}
	devs := []DeviceResource{}
	for _, line := range lines(string(data)) {
		d, err := ParseDeviceRule(line)
		if err != nil {
			log.Errorf("allowed devices: %v", err)
			return nil, err
		}
		devs = append(devs, d)
	}
	return devs, nil
}

// lines 按 \n 拆分，去掉行尾的 \r 和最后一个空行
func lines(s string) []string {
	if s == "" {
		return nil
	}
	ls := strings.Split(s, "\n")
	if ls[len(ls)-1] == "" {
		ls = ls[:len(ls)-1]
	}
	for i, l := range ls {
		ls[i] = strings.TrimSuffix(l, "\r")
	}
	return ls
}
