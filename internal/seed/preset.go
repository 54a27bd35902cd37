package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset describes a seed run: named accounts with their messages and
// follows, plus an optional batch of random users.
type Preset struct {
	Name   string         `yaml:"name"`
	Users  []PresetUser   `yaml:"users"`
	Random RandomSettings `yaml:"random"`
}

// PresetUser is a fixed account.
type PresetUser struct {
	Username string   `yaml:"username"`
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	ImageURL string   `yaml:"image_url"`
	Bio      string   `yaml:"bio"`
	Location string   `yaml:"location"`
	Messages []string `yaml:"messages"`
	Follows  []string `yaml:"follows"`
}

// RandomSettings controls generated data.
type RandomSettings struct {
	Users           int   `yaml:"users"`
	MessagesPerUser int   `yaml:"messages_per_user"`
	FollowsPerUser  int   `yaml:"follows_per_user"`
	LikesPerUser    int   `yaml:"likes_per_user"`
	Seed            int64 `yaml:"seed"`
}

// DefaultPreset is used when no preset file is given.
func DefaultPreset() *Preset {
	return &Preset{
		Name: "default",
		Random: RandomSettings{
			Users:           20,
			MessagesPerUser: 5,
			FollowsPerUser:  4,
			LikesPerUser:    6,
		},
	}
}

// ParsePreset decodes a YAML preset and checks it for obvious mistakes.
func ParsePreset(raw []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPreset reads and parses a YAML preset file.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset %s: %w", path, err)
	}
	return ParsePreset(raw)
}

// Validate rejects negative counts, duplicate usernames and follows of
// accounts the preset does not define.
func (p *Preset) Validate() error {
	r := p.Random
	if r.Users < 0 || r.MessagesPerUser < 0 || r.FollowsPerUser < 0 || r.LikesPerUser < 0 {
		return fmt.Errorf("preset %q: random counts must not be negative", p.Name)
	}

	names := make(map[string]struct{}, len(p.Users))
	for _, u := range p.Users {
		if u.Username == "" {
			return fmt.Errorf("preset %q: user without username", p.Name)
		}
		if _, dup := names[u.Username]; dup {
			return fmt.Errorf("preset %q: duplicate username %q", p.Name, u.Username)
		}
		names[u.Username] = struct{}{}
	}
	for _, u := range p.Users {
		for _, target := range u.Follows {
			if _, ok := names[target]; !ok {
				return fmt.Errorf("preset %q: %s follows unknown user %q", p.Name, u.Username, target)
			}
		}
	}
	return nil
}
