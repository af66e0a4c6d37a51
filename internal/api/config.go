package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const configFileName = ".fin-config"

// Config holds the CLI configuration
type Config struct {
	URL             string // API root reachable from anywhere, e.g. https://fin.example.com/api
	LANURL          string // Optional direct API root, probed first
	Token           string
	ProxyCookie     string
	ProxyCookieName string // Cookie name for reverse proxy auth (default: "auth_cookie")
	Brand           string // Branding shown in the TUI (default: "Financeiro")
	Timeout         time.Duration
	LogFile         string
	LogLevel        string
}

// configPaths lists where .fin-config is looked up, in order.
func configPaths() []string {
	paths := []string{
		configFileName,
		filepath.Join("..", configFileName),
		filepath.Join(filepath.Dir(os.Args[0]), configFileName),
		filepath.Join(filepath.Dir(os.Args[0]), "..", configFileName),
	}
	if explicit := os.Getenv("FIN_CONFIG"); explicit != "" {
		paths = append([]string{explicit}, paths...)
	}
	return paths
}

// LoadConfig reads .fin-config (dotenv format) and FIN_* environment overrides.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("proxy_cookie_name", "auth_cookie")
	v.SetDefault("brand", "Financeiro")
	v.SetDefault("timeout", "30s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", defaultLogFile())

	v.SetEnvPrefix("FIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		v.SetConfigFile(p)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", p, err)
		}
		break
	}

	config := &Config{
		URL:             strings.TrimRight(v.GetString("api_url"), "/"),
		LANURL:          strings.TrimRight(v.GetString("api_url_lan"), "/"),
		Token:           v.GetString("api_token"),
		ProxyCookie:     v.GetString("proxy_cookie"),
		ProxyCookieName: v.GetString("proxy_cookie_name"),
		Brand:           v.GetString("brand"),
		Timeout:         v.GetDuration("timeout"),
		LogFile:         v.GetString("log_file"),
		LogLevel:        v.GetString("log_level"),
	}

	if config.URL == "" {
		return nil, fmt.Errorf("missing required config: API_URL (copy %s.example to %s or set FIN_API_URL)", configFileName, configFileName)
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return config, nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fin-cli", "fin-cli.log")
}
