package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the central typed configuration struct.
type Config struct {
	App    AppConfig
	Log    LogConfig
	Kernel KernelConfig
}

type AppConfig struct {
	Name string
	Env  string // local | production | testing
}

type LogConfig struct {
	Level   string // debug | info | warn | error
	Format  string // console | json
	NoColor bool
}

type KernelConfig struct {
	// MaxDepth bounds the length of a request chain.
	MaxDepth int
	// ImplicitBindings enables Func/Lazy and other implicit bindings.
	ImplicitBindings bool
}

var defaults = map[string]any{
	"app.name":                 "go-preservation",
	"app.env":                  "local",
	"log.level":                "info",
	"log.format":               "console",
	"log.no_color":             false,
	"kernel.max_depth":         64,
	"kernel.implicit_bindings": true,
}

// Load reads .env (if present) and populates a Config from environment
// variables. LOG_LEVEL maps to log.level, KERNEL_MAX_DEPTH to
// kernel.max_depth and so on.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	v := newViper()
	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:   v.GetString("log.level"),
			Format:  v.GetString("log.format"),
			NoColor: v.GetBool("log.no_color"),
		},
		Kernel: KernelConfig{
			MaxDepth:         v.GetInt("kernel.max_depth"),
			ImplicitBindings: v.GetBool("kernel.implicit_bindings"),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	v := newViper()
	v.SetDefault(key, defaultVal)
	return v.GetString(key)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := newViper()
	v.SetDefault(key, defaultVal)
	return v.GetInt(key)
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	v := newViper()
	v.SetDefault(key, defaultVal)
	return v.GetBool(key)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}
