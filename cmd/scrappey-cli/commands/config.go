package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"scrappey-go/lib/configutil"
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/telemetry"
	"time"

	"dario.cat/mergo"
)

const configFileName = "scrappey.json5"

const (
	envApiKey  = "SCRAPPEY_API_KEY"
	envBaseUrl = "SCRAPPEY_BASE_URL"
)

type Config struct {
	ApiKey            string  `json:"api_key"`
	BaseUrl           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	// Db is a sqlite file or a libsql url where every exchange is recorded.
	Db string `json:"db"`
	// Dump is a directory that receives one file per http exchange.
	Dump      string           `json:"dump"`
	Telemetry telemetry.Config `json:"telemetry"`
}

var defaultConfig = Config{
	BaseUrl:        scrappey.DefaultBaseUrl,
	TimeoutSeconds: int(scrappey.DefaultTimeout / time.Second),
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// timeoutSeconds converts the --timeout flag to the config's whole seconds,
// anything under a second would read as unset.
func timeoutSeconds(d time.Duration) (int, error) {
	if d < time.Second {
		return 0, fmt.Errorf("timeout %s is under the minimum of 1s", d)
	}
	return int(d.Round(time.Second) / time.Second), nil
}

type lookupEnv func(key string) (string, bool)

// resolveConfig layers, from lowest to highest priority: defaults, the
// config file, the environment, then flags.
func resolveConfig(file Config, env lookupEnv, flags Config) (Config, error) {
	config := file

	var fromEnv Config
	if value, ok := env(envApiKey); ok {
		fromEnv.ApiKey = value
	}
	if value, ok := env(envBaseUrl); ok {
		fromEnv.BaseUrl = value
	}
	err := mergo.Merge(&config, fromEnv, mergo.WithOverride)
	if err != nil {
		return Config{}, err
	}
	err = mergo.Merge(&config, flags, mergo.WithOverride)
	if err != nil {
		return Config{}, err
	}
	return configutil.WithDefaults(config, defaultConfig)
}

// readConfigFile reads `path` or, when it is empty, the nearest
// scrappey.json5 above the working directory, which does not have to exist.
func readConfigFile(path string) (Config, error) {
	if path != "" {
		return configutil.ReadConfig[Config](path)
	}
	config, _, err := configutil.ReadRecursively[Config](configFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	return config, err
}
