package main

import (
	"encoding/json"
	"fmt"
	"os"

	"cgctl/cgroups"
	"cgctl/cgroups/subsystems"
	"cgctl/config"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var modeCommand = cli.Command{
	Name:  "mode",
	Usage: "print the cgroup hierarchy design of the running kernel (v1 or v2)",
	Action: func(context *cli.Context) error {
		fmt.Println(cgroups.Mode(cgroups.Auto()))
		return nil
	},
}

var subsystemsCommand = cli.Command{
	Name:  "subsystems",
	Usage: "list the controllers present on the running kernel, in application order",
	Action: func(context *cli.Context) error {
		h := cgroups.Auto()
		root, err := h.Root()
		if err != nil {
			return err
		}
		log.Debugf("hierarchy %s rooted at %s", cgroups.Mode(h), root)
		for _, s := range h.Subsystems() {
			fmt.Printf("%s\t%s\n", s.Kind(), s.Dir())
		}
		return nil
	},
}

var devicesCommand = cli.Command{
	Name:  "devices",
	Usage: "manage the device access rules of a cgroup",
	Subcommands: []cli.Command{
		{
			Name:      "list",
			Usage:     "print the allowed devices of a cgroup",
			ArgsUsage: "<cgroup>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "json",
					Usage: "print rules as json",
				},
			},
			Action: func(context *cli.Context) error {
				if len(context.Args()) < 1 {
					return fmt.Errorf("missing cgroup path")
				}
				c, err := devicesController(context.Args().Get(0))
				if err != nil {
					return err
				}
				devs, err := c.AllowedDevices()
				if err != nil {
					return err
				}
				if context.Bool("json") {
					return json.NewEncoder(os.Stdout).Encode(devs)
				}
				for _, d := range devs {
					fmt.Println(d.CgroupString())
				}
				return nil
			},
		},
		deviceRuleCommand("allow", true),
		deviceRuleCommand("deny", false),
	},
}

// deviceRuleCommand 生成 devices allow/deny 命令
// cgctl devices allow /mygroup "c 1:3 rwm"
func deviceRuleCommand(name string, allow bool) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     name + " access to devices, rule format is \"<a|b|c> <major|*>:<minor|*> <rwm>\"",
		ArgsUsage: "<cgroup> <rule>",
		Action: func(context *cli.Context) error {
			if len(context.Args()) < 2 {
				return fmt.Errorf("missing cgroup path or device rule")
			}
			rule, err := subsystems.ParseDeviceRule(context.Args().Get(1))
			if err != nil {
				return err
			}
			c, err := devicesController(context.Args().Get(0))
			if err != nil {
				return err
			}
			if allow {
				return c.AllowDevice(rule.Type, rule.Major, rule.Minor, rule.Access)
			}
			return c.DenyDevice(rule.Type, rule.Major, rule.Minor, rule.Access)
		},
	}
}

var applyCommand = cli.Command{
	Name:      "apply",
	Usage:     "create a cgroup and apply a resource policy to it",
	ArgsUsage: "<cgroup>",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "policy file (yaml)",
		},
	},
	Action: func(context *cli.Context) error {
		if len(context.Args()) < 1 {
			return fmt.Errorf("missing cgroup path")
		}
		file := context.String("config")
		if file == "" {
			return fmt.Errorf("missing policy file")
		}
		res, err := config.Load(file)
		if err != nil {
			return err
		}
		m := cgroups.NewCgroupManager(cgroups.Auto(), context.Args().Get(0))
		log.Infof("apply %s to %s", file, m.Path)
		return m.Set(res)
	},
}

func devicesController(path string) (*subsystems.DevicesController, error) {
	for _, s := range cgroups.NewCgroupManager(cgroups.Auto(), path).Subsystems() {
		if s.Kind() == subsystems.Devices {
			return s.Devices()
		}
	}
	return nil, errors.New("devices controller is not mounted")
}
