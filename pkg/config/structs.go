package config

import (
	"net"
	"strconv"
)

// Config holds the mapping and runtime settings persisted in config.json.
// All fields are plain values, so a copy of a Config is an independent
// snapshot.
type Config struct {
	PlayerExecutable string `mapstructure:"potplayer_exe" json:"potplayer_exe"` // Player binary launched per push
	WebPrefix        string `mapstructure:"web_prefix" json:"web_prefix"`       // Stripped from inbound web paths
	LocalRoot        string `mapstructure:"unc_root" json:"unc_root"`           // Prepended after stripping
	Host             string `mapstructure:"host" json:"host"`
	Port             int    `mapstructure:"port" json:"port"`
}

// Addr returns the host:port the HTTP listener binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
