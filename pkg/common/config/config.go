package config

import (
	"fmt"
	"os"

	"github.com/fystack/address-intake/pkg/common/enum"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/imdario/mergo"
)

var validate = validator.New()

type Config struct {
	Environment string       `yaml:"environment" validate:"required,oneof=production development"`
	Port        int          `yaml:"port" validate:"required,min=1,max=65535"`
	Version     string       `yaml:"version"`
	Database    DatabaseCfg  `yaml:"database"`
	Redis       RedisCfg     `yaml:"redis"`
	KVStore     KVStoreCfg   `yaml:"kvstore"`
	Store       StoreCfg     `yaml:"store"`
	Allowlist   AllowlistCfg `yaml:"allowlist"`
}

type DatabaseCfg struct {
	URL string `yaml:"url"`
}

type RedisCfg struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

type KVStoreCfg struct {
	Type   enum.KVStoreType `yaml:"type" validate:"omitempty,oneof=badger consul"`
	Badger BadgerCfg        `yaml:"badger"`
	Consul ConsulCfg        `yaml:"consul"`
}

type BadgerCfg struct {
	Directory string `yaml:"directory"`
	Prefix    string `yaml:"prefix"`
}

type ConsulCfg struct {
	Scheme   string      `yaml:"scheme"`
	Address  string      `yaml:"address"`
	Folder   string      `yaml:"folder"`
	Token    string      `yaml:"token"`
	HttpAuth HttpAuthCfg `yaml:"http_auth"`
}

type HttpAuthCfg struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type StoreCfg struct {
	Backend enum.StoreBackend `yaml:"backend" validate:"required,oneof=postgres kv memory"`
}

type AllowlistCfg struct {
	Source     enum.AllowlistSource `yaml:"source" validate:"required,oneof=db kv static"`
	StaticPath string               `yaml:"static_path"`
	Bloom      BloomCfg             `yaml:"bloom"`
}

type BloomCfg struct {
	Backend   enum.BloomBackend `yaml:"backend" validate:"omitempty,oneof=none in_memory redis"`
	BatchSize int               `yaml:"batch_size"`
	Redis     RedisBloomCfg     `yaml:"redis"`
	InMemory  InMemoryBloomCfg  `yaml:"in_memory"`
}

type RedisBloomCfg struct {
	KeyPrefix string  `yaml:"key_prefix"`
	ErrorRate float64 `yaml:"error_rate"`
	Capacity  int     `yaml:"capacity"`
}

type InMemoryBloomCfg struct {
	ExpectedItems     uint    `yaml:"expected_items"`
	FalsePositiveRate float64 `yaml:"false_positive_rate"`
}

func defaults() Config {
	return Config{
		Environment: "development",
		Port:        8080,
		Store:       StoreCfg{Backend: enum.StoreBackendMemory},
		Allowlist: AllowlistCfg{
			Source: enum.AllowlistSourceStatic,
			Bloom: BloomCfg{
				Backend:   enum.BloomBackendNone,
				BatchSize: 1000,
				Redis: RedisBloomCfg{
					KeyPrefix: "allowlist_bloom",
					ErrorRate: 0.01,
					Capacity:  100000,
				},
				InMemory: InMemoryBloomCfg{
					ExpectedItems:     100000,
					FalsePositiveRate: 0.01,
				},
			},
		},
	}
}

// Load reads a YAML config file, expands ${VAR} references from the process
// environment (connection strings and credentials live there), merges
// defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&cfg, defaults()); err != nil {
		return nil, err
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
