// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the pool wiring from a yaml file.
package config

import (
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PoolAddress is the address the engine holds custody under.
var PoolAddress = common.BytesToAddress([]byte("streampool.pool"))

// Config is the token wiring of a pool instance.
type Config struct {
	StakedToken  common.Address
	ShareToken   common.Address
	Treasury     common.Address
	TokenAdmin   common.Address
	RewardTokens []common.Address
}

// fileConfig is the yaml shape; addresses come in as hex strings.
type fileConfig struct {
	StakedToken  string   `yaml:"stakedToken"`
	ShareToken   string   `yaml:"shareToken"`
	Treasury     string   `yaml:"treasury"`
	TokenAdmin   string   `yaml:"tokenAdmin"`
	RewardTokens []string `yaml:"rewardTokens"`
}

// Default returns the wiring used by solo mode, with well-known
// addresses so the instance is usable without a config file.
func Default() *Config {
	return &Config{
		StakedToken: common.BytesToAddress([]byte("streampool.staked")),
		ShareToken:  common.BytesToAddress([]byte("streampool.share")),
		Treasury:    common.BytesToAddress([]byte("streampool.treasury")),
		TokenAdmin:  common.BytesToAddress([]byte("streampool.admin")),
		RewardTokens: []common.Address{
			common.BytesToAddress([]byte("streampool.reward-a")),
			common.BytesToAddress([]byte("streampool.reward-b")),
		},
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg := &Config{}
	if cfg.StakedToken, err = parseAddress("stakedToken", fc.StakedToken); err != nil {
		return nil, err
	}
	if cfg.ShareToken, err = parseAddress("shareToken", fc.ShareToken); err != nil {
		return nil, err
	}
	if cfg.Treasury, err = parseAddress("treasury", fc.Treasury); err != nil {
		return nil, err
	}
	if cfg.TokenAdmin, err = parseAddress("tokenAdmin", fc.TokenAdmin); err != nil {
		return nil, err
	}
	for _, raw := range fc.RewardTokens {
		addr, err := parseAddress("rewardTokens", raw)
		if err != nil {
			return nil, err
		}
		cfg.RewardTokens = append(cfg.RewardTokens, addr)
	}
	return cfg, cfg.Validate()
}

// Validate checks the wiring for zero addresses and duplicates.
func (c *Config) Validate() error {
	named := map[string]common.Address{
		"stakedToken": c.StakedToken,
		"shareToken":  c.ShareToken,
		"treasury":    c.Treasury,
		"tokenAdmin":  c.TokenAdmin,
	}
	for name, addr := range named {
		if addr.Cmp(common.Address{}) == 0 {
			return errors.Errorf("config: %s must not be the zero address", name)
		}
	}
	seen := make(map[common.Address]bool)
	for _, addr := range c.RewardTokens {
		if addr.Cmp(common.Address{}) == 0 {
			return errors.New("config: reward token must not be the zero address")
		}
		if addr == c.StakedToken {
			return errors.New("config: the staked token cannot be a reward token")
		}
		if seen[addr] {
			return errors.Errorf("config: duplicate reward token %s", addr)
		}
		seen[addr] = true
	}
	return nil
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, errors.Errorf("config: %s: invalid address %q", name, value)
	}
	return common.HexToAddress(value), nil
}
