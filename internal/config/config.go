package config

import (
	"time"

	"github.com/apper-canvas/employee-registry-backend/library/pg"
	"github.com/apper-canvas/employee-registry-backend/library/yamlenv"
)

type Config struct {
	Log      LogConfig         `yaml:"log"`
	Store    StoreConfig       `yaml:"store"`
	Snapshot SnapshotConfig    `yaml:"snapshot"`
	Postgres pg.PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig       `yaml:"redis"`
	Kafka    KafkaConfig       `yaml:"kafka"`
	UserAPI  ApiConfig         `yaml:"userAPI"`
}

type LogConfig struct {
	Level *yamlenv.Env[string] `yaml:"level"`
}

type StoreConfig struct {
	FlushTimeout *yamlenv.Env[time.Duration] `yaml:"flush_timeout"`
	Seed         *yamlenv.Env[bool]          `yaml:"seed"`
	Timezone     *yamlenv.Env[string]        `yaml:"timezone"`
}

// SnapshotConfig selects where the durable copy of the collection lives.
// Driver is one of file, sqlite, postgres, redis, s3, memory.
type SnapshotConfig struct {
	Driver *yamlenv.Env[string] `yaml:"driver"`
	Name   *yamlenv.Env[string] `yaml:"name"`
	File   struct {
		Dir *yamlenv.Env[string] `yaml:"dir"`
	} `yaml:"file"`
	SQLite struct {
		Path *yamlenv.Env[string] `yaml:"path"`
	} `yaml:"sqlite"`
	S3 struct {
		Bucket    *yamlenv.Env[string] `yaml:"bucket"`
		Region    *yamlenv.Env[string] `yaml:"region"`
		Endpoint  *yamlenv.Env[string] `yaml:"endpoint"`
		PathStyle *yamlenv.Env[bool]   `yaml:"path_style"`
		Prefix    *yamlenv.Env[string] `yaml:"prefix"`
		AccessKey *yamlenv.Env[string] `yaml:"access_key"`
		SecretKey *yamlenv.Env[string] `yaml:"secret_key"`
	} `yaml:"s3"`
}

type RedisConfig struct {
	URL *yamlenv.Env[string] `yaml:"url"`
}

type KafkaConfig struct {
	Enabled          *yamlenv.Env[bool]   `yaml:"enabled"`
	Bootstrap        *yamlenv.Env[string] `yaml:"bootstrap"`
	ProducerClientID *yamlenv.Env[string] `yaml:"producer_client_id"`
	ConsumerGroup    *yamlenv.Env[string] `yaml:"consumer_group"`
	Topics           struct {
		Lifecycle  *yamlenv.Env[string] `yaml:"lifecycle"`
		Onboarding *yamlenv.Env[string] `yaml:"onboarding"`
	} `yaml:"topics"`
}

type ApiConfig struct {
	Port        *yamlenv.Env[int]           `yaml:"port"`
	FormIdleTTL *yamlenv.Env[time.Duration] `yaml:"form_idle_ttl"`
	MaxForms    *yamlenv.Env[int]           `yaml:"max_forms"`
}
