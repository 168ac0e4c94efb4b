// Package config loads resource policies from YAML files.
package config

import (
	"os"

	"cgctl/cgroups/subsystems"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Load reads and decodes the policy file at p. Unknown keys are rejected.
func Load(p string) (*subsystems.Resources, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrap(err, "read policy")
	}
	return Parse(b)
}

// Parse decodes a YAML policy, e.g.
//
//	devices:
//	  - {allow: false, type: a, major: -1, minor: -1, access: rwm}
//	  - {allow: true, type: c, major: 1, minor: 3, access: rw}
//	memory:
//	  limit: 268435456
func Parse(b []byte) (*subsystems.Resources, error) {
	res := &subsystems.Resources{}
	if err := yaml.UnmarshalStrict(b, res); err != nil {
		return nil, errors.Wrap(err, "decode policy")
	}
	return res, nil
}
