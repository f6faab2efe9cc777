package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kiosk404/roundtable/pkg/utils/json"
)

// ServerOptions configures the HTTP serving surface.
type ServerOptions struct {
	// BindAddress is the IP the server listens on.
	BindAddress string `json:"bind_address" mapstructure:"bind_address"`

	// BindPort is the listening port.
	BindPort int `json:"bind_port" mapstructure:"bind_port"`

	// Mode is the gin mode: debug, release, or test.
	Mode string `json:"mode" mapstructure:"mode"`

	// EnableProfiling exposes pprof endpoints under /debug/pprof.
	EnableProfiling bool `json:"enable_profiling" mapstructure:"enable_profiling"`
}

// AuthOptions configures Bearer token authentication.
type AuthOptions struct {
	// Enabled turns token enforcement on.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Token is the expected Bearer token. Falls back to the
	// ROUNDTABLE_API_TOKEN environment variable when empty.
	Token string `json:"token" mapstructure:"token"`
}

// MeetingOptions configures the meeting module.
type MeetingOptions struct {
	// StoreType selects the persistence backend: "boltdb" or "inmemory".
	StoreType string `json:"store_type" mapstructure:"store_type"`

	// BoltDBPath is the database file path for the boltdb backend.
	BoltDBPath string `json:"boltdb_path" mapstructure:"boltdb_path"`

	// ChainDepth caps mention-triggered auto-response chains.
	ChainDepth int `json:"chain_depth" mapstructure:"chain_depth"`

	// MaxRetries is the retry budget for transient model failures.
	MaxRetries int `json:"max_retries" mapstructure:"max_retries"`
}

// LogOptions configures logging.
type LogOptions struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string `json:"level" mapstructure:"level"`

	// File additionally writes logs to this path when set.
	File string `json:"file" mapstructure:"file"`
}

// Options is the full chamber configuration.
type Options struct {
	Server  *ServerOptions  `json:"server"  mapstructure:"server"`
	Auth    *AuthOptions    `json:"auth"    mapstructure:"auth"`
	Meeting *MeetingOptions `json:"meeting" mapstructure:"meeting"`
	Log     *LogOptions     `json:"log"     mapstructure:"log"`
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		Server: &ServerOptions{
			BindAddress:     "127.0.0.1",
			BindPort:        11800,
			Mode:            "release",
			EnableProfiling: false,
		},
		Auth: &AuthOptions{},
		Meeting: &MeetingOptions{
			StoreType:  "boltdb",
			BoltDBPath: "data/roundtable.db",
			ChainDepth: 4,
			MaxRetries: 3,
		},
		Log: &LogOptions{
			Level: "info",
		},
	}
}

// AddFlags registers all option flags on the given flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Server.BindAddress, "server.bind-address", o.Server.BindAddress,
		"The IP address on which to listen.")
	fs.IntVar(&o.Server.BindPort, "server.bind-port", o.Server.BindPort,
		"The port on which to serve HTTP.")
	fs.StringVar(&o.Server.Mode, "server.mode", o.Server.Mode,
		"Server mode: debug, release, or test.")
	fs.BoolVar(&o.Server.EnableProfiling, "server.enable-profiling", o.Server.EnableProfiling,
		"Expose profiling endpoints under /debug/pprof.")

	fs.BoolVar(&o.Auth.Enabled, "auth.enabled", o.Auth.Enabled,
		"Enforce Bearer token authentication.")
	fs.StringVar(&o.Auth.Token, "auth.token", o.Auth.Token,
		"Expected Bearer token (falls back to ROUNDTABLE_API_TOKEN).")

	fs.StringVar(&o.Meeting.StoreType, "meeting.store-type", o.Meeting.StoreType,
		"Persistence backend: boltdb or inmemory.")
	fs.StringVar(&o.Meeting.BoltDBPath, "meeting.boltdb-path", o.Meeting.BoltDBPath,
		"Database file path for the boltdb backend.")
	fs.IntVar(&o.Meeting.ChainDepth, "meeting.chain-depth", o.Meeting.ChainDepth,
		"Maximum depth of mention-triggered auto-response chains.")
	fs.IntVar(&o.Meeting.MaxRetries, "meeting.max-retries", o.Meeting.MaxRetries,
		"Retry budget for transient model failures.")

	fs.StringVar(&o.Log.Level, "log.level", o.Log.Level,
		"Minimum log level: debug, info, warn, or error.")
	fs.StringVar(&o.Log.File, "log.file", o.Log.File,
		"Additionally write logs to this file.")
}

// Complete fills derived defaults.
func (o *Options) Complete() error {
	if o.Server == nil {
		o.Server = NewOptions().Server
	}
	if o.Auth == nil {
		o.Auth = &AuthOptions{}
	}
	if o.Meeting == nil {
		o.Meeting = NewOptions().Meeting
	}
	if o.Log == nil {
		o.Log = NewOptions().Log
	}
	return nil
}

// Validate checks field-level constraints.
func (o *Options) Validate() []error {
	var errs []error
	if o.Server.BindPort < 1 || o.Server.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("server.bind-port %d out of range [1, 65535]", o.Server.BindPort))
	}
	switch o.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("unknown server.mode %q", o.Server.Mode))
	}
	switch o.Meeting.StoreType {
	case "boltdb", "inmemory":
	default:
		errs = append(errs, fmt.Errorf("unknown meeting.store-type %q", o.Meeting.StoreType))
	}
	return errs
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)
	return string(data)
}
