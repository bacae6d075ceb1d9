// Package config loads sysapp settings with viper.
//
// Precedence, highest first: explicit Set (CLI flags), SYSAPP_* environment
// variables, sysapp.yaml, defaults. The config file is looked up in the
// working directory, then $XDG_CONFIG_HOME/sysapp (or $HOME/.config/sysapp).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyDBDriver         = "db.driver"
	KeyDBDSN            = "db.dsn"
	KeyDBMaxConns       = "db.max-open-conns"
	KeyDBConnectTimeout = "db.connect-timeout"
	KeyListen           = "listen"
	KeyAuthToken        = "auth-token"
	KeyLogFile          = "log.file"
	KeyLogLevel         = "log.level"
	KeyUploadsDir       = "uploads.dir"
	KeyUploadLimit      = "uploads.max-bytes"
	KeyPageSize         = "page-size"
	KeyTimezone         = "timezone"
	KeyActor            = "actor"
	KeyJSON             = "json"
)

var (
	v  *viper.Viper
	mu sync.RWMutex
)

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup; tests may call it again
// to reset state.
func Initialize() error {
	nv := viper.New()
	nv.SetConfigName("sysapp")
	nv.SetConfigType("yaml")
	nv.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		nv.AddConfigPath(filepath.Join(xdg, "sysapp"))
	} else if home, err := os.UserHomeDir(); err == nil {
		nv.AddConfigPath(filepath.Join(home, ".config", "sysapp"))
	}

	nv.SetEnvPrefix("SYSAPP")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()

	setDefaults(nv)

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	mu.Lock()
	v = nv
	mu.Unlock()
	return nil
}

func setDefaults(nv *viper.Viper) {
	nv.SetDefault(KeyDBDriver, "sqlite")
	nv.SetDefault(KeyDBDSN, "sysapp.db")
	nv.SetDefault(KeyDBMaxConns, 10)
	nv.SetDefault(KeyDBConnectTimeout, 30*time.Second)
	nv.SetDefault(KeyListen, "127.0.0.1:8080")
	nv.SetDefault(KeyAuthToken, "")
	nv.SetDefault(KeyLogFile, "error.log")
	nv.SetDefault(KeyLogLevel, "info")
	nv.SetDefault(KeyUploadsDir, "uploads")
	nv.SetDefault(KeyUploadLimit, int64(20<<20))
	nv.SetDefault(KeyPageSize, 10)
	nv.SetDefault(KeyTimezone, "Local")
	nv.SetDefault(KeyActor, "")
	nv.SetDefault(KeyJSON, false)
}

func get() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	return v
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if nv := get(); nv != nil {
		return nv.GetString(key)
	}
	return ""
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if nv := get(); nv != nil {
		return nv.GetBool(key)
	}
	return false
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if nv := get(); nv != nil {
		return nv.GetInt(key)
	}
	return 0
}

// GetInt64 retrieves a 64-bit integer configuration value
func GetInt64(key string) int64 {
	if nv := get(); nv != nil {
		return nv.GetInt64(key)
	}
	return 0
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if nv := get(); nv != nil {
		return nv.GetDuration(key)
	}
	return 0
}

// Set sets a configuration value, overriding file and environment.
func Set(key string, value interface{}) {
	if nv := get(); nv != nil {
		nv.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]interface{} {
	if nv := get(); nv != nil {
		return nv.AllSettings()
	}
	return map[string]interface{}{}
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	if nv := get(); nv != nil {
		return nv.ConfigFileUsed()
	}
	return ""
}

// Location resolves the timezone setting. Unknown names fall back to time.Local.
func Location() *time.Location {
	name := GetString(KeyTimezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// Watch re-reads the config file whenever it changes and calls onChange.
// It is a no-op when no config file was found.
func Watch(onChange func(fsnotify.Event)) {
	nv := get()
	if nv == nil || nv.ConfigFileUsed() == "" {
		return
	}
	nv.OnConfigChange(onChange)
	nv.WatchConfig()
}
