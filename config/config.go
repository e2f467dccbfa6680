package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"imageratio/messages"
	"imageratio/validations/validators"
)

const (
	defaultHTTPHost    = "0.0.0.0:6060"
	defaultMaxBodySize = "20mb"
)

type Config struct {
	SecretAccessKey          string            `json:"secret_access_key" yaml:"secret_access_key"`
	AccessKeyID              string            `json:"access_key_id" yaml:"access_key_id"`
	Region                   string            `json:"region" yaml:"region"`
	BucketName               string            `json:"bucket_name" yaml:"bucket_name"`
	Endpoint                 string            `json:"endpoint" yaml:"endpoint"`
	SudoKey                  string            `json:"sudo_key" yaml:"sudo_key"`
	HTTPHost                 string            `json:"http_host" yaml:"http_host"`
	PostgresConnectionString string            `json:"postgres_connection_string" yaml:"postgres_connection_string"`
	Messages                 messages.Messages `json:"messages" yaml:"messages"`
	AutoOrient               bool              `json:"auto_orient" yaml:"auto_orient"`
	MaxBodySize              string            `json:"max_body_size" yaml:"max_body_size"`
	RateLimit                float64           `json:"rate_limit" yaml:"rate_limit"`
	Debug                    bool              `json:"debug" yaml:"debug"`

	// MaxBodyBytes is MaxBodySize in bytes.
	MaxBodyBytes int64 `json:"-" yaml:"-"`
}

// S3Enabled reports whether enough of the S3 settings are present to read
// objects.
func (c *Config) S3Enabled() bool {
	return c.BucketName != "" && c.Region != ""
}

func defaultPath() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(h, ".imageratio.json")
}

func readFile(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &c)
	default:
		err = json.Unmarshal(b, &c)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"AWS_SECRET_ACCESS_KEY", &c.SecretAccessKey},
		{"AWS_ACCESS_KEY_ID", &c.AccessKeyID},
		{"AWS_REGION", &c.Region},
		{"AWS_BUCKET_NAME", &c.BucketName},
		{"AWS_ENDPOINT", &c.Endpoint},
		{"IMAGERATIO_SUDO_KEY", &c.SudoKey},
		{"HOST", &c.HTTPHost},
		{"POSTGRES_CONNECTION_STRING", &c.PostgresConnectionString},
		{"IMAGERATIO_MAX_BODY_SIZE", &c.MaxBodySize},
	} {
		if e := os.Getenv(v.name); e != "" {
			*v.dst = e
		}
	}

	if e := os.Getenv("IMAGERATIO_DEBUG"); e != "" {
		debug, err := strconv.ParseBool(e)
		if err != nil {
			return errors.Wrap(err, "IMAGERATIO_DEBUG")
		}
		c.Debug = debug
	}
	if e := os.Getenv("IMAGERATIO_RATE_LIMIT"); e != "" {
		limit, err := strconv.ParseFloat(e, 64)
		if err != nil {
			return errors.Wrap(err, "IMAGERATIO_RATE_LIMIT")
		}
		c.RateLimit = limit
	}
	return nil
}

func (c *Config) applyDefaults() error {
	if c.HTTPHost == "" {
		c.HTTPHost = defaultHTTPHost
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = defaultMaxBodySize
	}
	n, err := validators.ParseSize(c.MaxBodySize)
	if err != nil {
		return errors.Wrap(err, "max_body_size")
	}
	c.MaxBodyBytes = n
	c.Messages = messages.Default().Merge(c.Messages)
	return nil
}

// Load reads the config at path, or ~/.imageratio.json if path is empty and
// that file exists, then applies the environment.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if path == "" {
		if p := defaultPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		c, err := readFile(path)
		if err != nil {
			return nil, err
		}
		conf = c
	}
	if err := conf.applyEnv(); err != nil {
		return nil, err
	}
	if err := conf.applyDefaults(); err != nil {
		return nil, err
	}
	return conf, nil
}

type pair[A, B any] struct {
	a0 A
	a1 B
}

func validate(pairs ...pair[string, string]) {
	for _, v := range pairs {
		if v.a1 == "" {
			panic(v.a0 + " is required but not specified")
		}
	}
}

// NewConfig loads the server config and panics if it is unusable.
func NewConfig() *Config {
	conf, err := Load(os.Getenv("IMAGERATIO_CONFIG"))
	if err != nil {
		panic(err)
	}

	// Validate all the items.
	validate(
		pair[string, string]{"IMAGERATIO_SUDO_KEY", conf.SudoKey},
	)
	if conf.S3Enabled() {
		validate(
			pair[string, string]{"AWS_SECRET_ACCESS_KEY", conf.SecretAccessKey},
			pair[string, string]{"AWS_ACCESS_KEY_ID", conf.AccessKeyID},
		)
	}
	return conf
}
