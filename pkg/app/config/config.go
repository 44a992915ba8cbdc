// Package config provides the environment-driven configuration table and
// helpers for the .env file stored under the XDG config directory.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"go-simpler.org/env"

	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/utils/apputil"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/errorf"
	"roost.dev/pkg/utils/log"
	"roost.dev/pkg/version"
)

// C is the relay configuration, read from the environment, with a .env
// file in the config dir overriding when present.
type C struct {
	Listen       string `env:"RELAY_LISTEN" default:"0.0.0.0" usage:"network listen address"`
	Port         int    `env:"RELAY_PORT" default:"8080" usage:"port to listen on"`
	DataDir      string `env:"DATA_DIR" default:"./data" usage:"storage location for the event store"`
	Name         string `env:"RELAY_NAME" default:"roost" usage:"relay name advertised in the NIP-11 document"`
	Description  string `env:"RELAY_DESCRIPTION" default:"personal nostr relay" usage:"relay description"`
	Contact      string `env:"RELAY_CONTACT" usage:"operator contact"`
	Pubkey       string `env:"RELAY_PUBKEY" usage:"operator pubkey advertised in the NIP-11 document"`
	URL          string `env:"RELAY_URL" usage:"external websocket URL of the relay, used for NIP-42 relay tag checks"`
	OwnerOnly    bool   `env:"RELAY_OWNER_ONLY" default:"false" usage:"only accept events signed by the owner pubkey"`
	OwnerPubkey  string `env:"NOSTR_OWNER_PUBKEY" usage:"hex owner pubkey, required when owner-only is on"`
	MinPow       int    `env:"RELAY_MIN_POW" default:"0" usage:"minimum NIP-13 difficulty bits, 0 disables"`
	PastLimit    int64  `env:"RELAY_CREATED_AT_PAST_LIMIT_SECONDS" default:"2592000" usage:"reject events with created_at older than this many seconds"`
	FutureLimit  int64  `env:"RELAY_CREATED_AT_FUTURE_LIMIT_SECONDS" default:"600" usage:"reject events with created_at further in the future than this many seconds"`
	AuthRequired bool   `env:"RELAY_AUTH_REQUIRED" default:"false" usage:"require NIP-42 authentication before accepting frames"`
	MaxSubs      int    `env:"RELAY_MAX_SUBSCRIPTIONS" default:"20" usage:"maximum concurrent subscriptions per connection"`
	RateLimit    int    `env:"RELAY_RATE_LIMIT" default:"100" usage:"inbound frames per minute per connection, 0 disables"`
	LogLevel     string `env:"RELAY_LOG_LEVEL" default:"info" usage:"log level: off fatal error warn info debug trace"`
	Pprof        bool   `env:"RELAY_PPROF" default:"false" usage:"enable pprof on 127.0.0.1:6060"`
	Config       string `env:"RELAY_CONFIG_DIR" usage:"location of the optional .env configuration file"`
}

// New loads the configuration from the environment and, when present, the
// .env file in the config dir.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.T(err) {
		return
	}
	if cfg.Config == "" {
		cfg.Config = filepath.Join(xdg.ConfigHome, version.Name)
	}
	envPath := filepath.Join(cfg.Config, ".env")
	if apputil.FileExists(envPath) {
		var b []byte
		if b, err = os.ReadFile(envPath); chk.T(err) {
			return
		}
		if err = env.Load(
			cfg, &env.Options{SliceSep: ",", Source: fileSource(parseEnvFile(b))},
		); chk.E(err) {
			return
		}
		log.I.F("loaded configuration from %s", envPath)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints.
func (cfg *C) Validate() (err error) {
	if cfg.OwnerOnly {
		if cfg.OwnerPubkey == "" {
			return errorf.E(
				"NOSTR_OWNER_PUBKEY is required when RELAY_OWNER_ONLY is true",
			)
		}
		if len(cfg.OwnerPubkey) != 64 || !hex.Valid(cfg.OwnerPubkey) {
			return errorf.E(
				"NOSTR_OWNER_PUBKEY must be 64 lowercase hex chars",
			)
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return errorf.E("RELAY_PORT %d out of range", cfg.Port)
	}
	return
}

// Owner returns the decoded owner pubkey, or nil when owner-only is off.
func (cfg *C) Owner() (pk []byte) {
	if !cfg.OwnerOnly {
		return
	}
	pk, _ = hex.Dec(cfg.OwnerPubkey)
	return
}

type fileSource map[string]string

func (f fileSource) LookupEnv(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

func parseEnvFile(b []byte) (m map[string]string) {
	m = make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return
}

// HelpRequested returns true if any of the common help words are the first
// command line parameter.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv reports whether the current settings should be printed as a list
// of environment variable key/values.
func GetEnv() (requested bool) {
	return len(os.Args) > 1 && strings.ToLower(os.Args[1]) == "env"
}

// KV is a key/value pair.
type KV struct{ Key, Value string }

// EnvKV lists a config struct as env var key/value pairs.
func EnvKV(cfg any) (m []KV) {
	t := reflect.TypeOf(cfg)
	v := reflect.ValueOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		if k == "" {
			continue
		}
		m = append(m, KV{k, fmt.Sprint(v.Field(i).Interface())})
	}
	return
}

// PrintEnv renders the current settings, sorted, one per line.
func PrintEnv(cfg *C, printer io.Writer) {
	kvs := EnvKV(*cfg)
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].Key < kvs[j].Key })
	for _, kv := range kvs {
		_, _ = fmt.Fprintf(printer, "%s=%s\n", kv.Key, kv.Value)
	}
}

// PrintHelp outputs the configuration option listing with defaults and the
// current values.
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(printer, "%s %s\n\n", version.Name, version.V)
	_, _ = fmt.Fprintf(
		printer, "Environment variables that configure %s:\n\n", version.Name,
	)
	env.Usage(cfg, printer, &env.Options{SliceSep: ","})
	_, _ = fmt.Fprintf(
		printer,
		"\nCLI parameter 'help' prints this information; 'env' prints the "+
			"current configuration.\nA .env file at %s/.env is loaded when "+
			"present and overridden by the environment.\n\n"+
			"current configuration:\n\n",
		cfg.Config,
	)
	PrintEnv(cfg, printer)
	_, _ = fmt.Fprintln(printer)
}
