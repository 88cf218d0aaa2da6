package nestform

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables that override the
// configuration file.
const EnvPrefix = "NESTFORM_"

// Config containing all the configuration values for a service.
type Config struct {
	// GINServer is the address of the GIN (gogs) server users log in with.
	GINServer string `yaml:"ginserver" env:"GIN_SERVER"`
	Port      uint16 `yaml:"port" env:"PORT"`
	// CookieName is the name of the session cookie.
	CookieName string `yaml:"cookiename" env:"COOKIE_NAME"`
	DBPath     string `yaml:"dbpath" env:"DB_PATH"`
	// QueueLength is the capacity of the post-submission job queue.
	QueueLength int `yaml:"queuelength" env:"QUEUE_LENGTH"`
	// SessionMaxAge limits how long a login is valid (one week when unset).
	SessionMaxAge time.Duration `yaml:"sessionmaxage" env:"SESSION_MAX_AGE"`
	// Debug enables SQL statement logging.
	Debug bool `yaml:"debug" env:"DEBUG"`
}

// Default configuration values.
const (
	DefaultPort          uint16 = 3000
	DefaultCookieName           = "nestform"
	DefaultDBPath               = "./nestform.db"
	DefaultSessionMaxAge        = 7 * 24 * time.Hour
)

// SetDefaults fills in the unset values.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.SessionMaxAge == 0 {
		c.SessionMaxAge = DefaultSessionMaxAge
	}
}

// LoadConfig reads the YAML configuration file at path, applies the
// environment overrides, and fills in the defaults.  An empty path reads the
// environment only.
func LoadConfig(path string) (*Config, error) {
	cfg := new(Config)
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}
	cfg.SetDefaults()
	return cfg, nil
}
