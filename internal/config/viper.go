package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Keys that can be overridden from the environment (MNEMO_GATEWAY_ADDR, ...)
// or from bound CLI flags.
const (
	KeyGatewayAddr   = "gateway.addr"
	KeyMemoryBackend = "memory.backend"
	KeyMemoryPath    = "memory.path"
	KeyHistoryPath   = "history.path"
	KeyHistoryWindow = "history.window"
	KeyLogDebug      = "log.debug"
	KeyLogPretty     = "log.pretty"
)

// NewViper returns a viper instance reading MNEMO_ prefixed environment
// variables. Precedence once flags are bound: flag > env > file > default.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MNEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the named flags of cmd to config keys. Unknown flags are skipped.
func BindFlags(v *viper.Viper, cmd *cobra.Command, flags map[string]string) {
	for name, key := range flags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = cmd.InheritedFlags().Lookup(name)
		}
		if f == nil {
			continue
		}
		_ = v.BindPFlag(key, f)
	}
}

// Overlay copies every key viper knows about (from env or a changed flag) onto cfg.
func Overlay(cfg *Config, v *viper.Viper) {
	if v.IsSet(KeyGatewayAddr) {
		if s := v.GetString(KeyGatewayAddr); s != "" {
			cfg.Gateway.Addr = s
		}
	}
	if v.IsSet(KeyMemoryBackend) {
		if s := v.GetString(KeyMemoryBackend); s != "" {
			cfg.Memory.Backend = s
		}
	}
	if v.IsSet(KeyMemoryPath) {
		if s := v.GetString(KeyMemoryPath); s != "" {
			cfg.Memory.Path = ExpandHome(s)
		}
	}
	if v.IsSet(KeyHistoryPath) {
		if s := v.GetString(KeyHistoryPath); s != "" {
			cfg.History.Path = ExpandHome(s)
		}
	}
	if v.IsSet(KeyHistoryWindow) {
		if n := v.GetInt(KeyHistoryWindow); n > 0 {
			cfg.History.Window = n
		}
	}
	if v.IsSet(KeyLogDebug) && v.GetBool(KeyLogDebug) {
		cfg.Log.Debug = true
	}
	if v.IsSet(KeyLogPretty) && v.GetBool(KeyLogPretty) {
		cfg.Log.Pretty = true
	}
}
