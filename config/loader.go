package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOption customizes configuration loading.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.envFile = path }
}

// Load reads configuration for the service into cfg. A config.yml and a
// .env file are searched for in standard locations unless explicit
// paths are given; environment variables override file values using
// underscore-separated section paths, with or without the uppercased
// service name as prefix (TRANSCRIPTFLOW_DISPATCH_TOPIC or
// DISPATCH_TOPIC). The prefixed form wins when both are set.
func Load(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.envFile == "" {
		o.envFile = findFirst(
			fmt.Sprintf(".env.%s", serviceName),
			".env",
			fmt.Sprintf("cmd/%s/.env", serviceName),
		)
	}
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", o.envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v, serviceName)

	if o.configFile == "" {
		o.configFile = findFirst(
			"config.yml",
			"config/config.yml",
			fmt.Sprintf("cmd/%s/config.yml", serviceName),
		)
	}
	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", o.configFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshaling config for %s: %w", serviceName, err)
	}
	return nil
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// bindEnv maps each UNDERSCORE_SEPARATED environment variable onto the
// nested viper keys it could address, so SECTION_FIELD overrides
// section.field without explicit binding per key. Variables carrying
// the uppercased service name as prefix are bound first, with the
// prefix stripped, so the prefixed form takes precedence.
func bindEnv(v *viper.Viper, serviceName string) {
	prefix := strings.ToUpper(serviceName) + "_"
	environ := os.Environ()

	for _, env := range environ {
		name, value, ok := splitEnv(env)
		if ok && strings.HasPrefix(name, prefix) {
			bindEnvVar(v, strings.TrimPrefix(name, prefix), value)
		}
	}
	for _, env := range environ {
		if name, value, ok := splitEnv(env); ok {
			bindEnvVar(v, name, value)
		}
	}
}

func splitEnv(env string) (name, value string, ok bool) {
	pair := strings.SplitN(env, "=", 2)
	if len(pair) != 2 || pair[0] == "" {
		return "", "", false
	}
	return pair[0], pair[1], true
}

func bindEnvVar(v *viper.Viper, name, value string) {
	key := strings.ToLower(name)
	parts := strings.Split(key, "_")
	for i := 1; i < len(parts); i++ {
		nested := strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_")
		if !v.IsSet(nested) {
			v.Set(nested, value)
		}
	}
}
