// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bitfsorg/libsafe-go/tx"
)

// EnvPrefix prefixes environment variables that override file values,
// e.g. SAFEWALLET_NETWORK.
const EnvPrefix = "SAFEWALLET"

// Configuration keys, shared by the file, the environment and CLI flags.
const (
	KeyDataDir       = "datadir"
	KeyNetwork       = "network"
	KeyLogLevel      = "loglevel"
	KeyLogFile       = "logfile"
	KeyConfirmations = "confirmations"
	KeySort          = "sort"
	KeyRPCURL        = "rpcurl"
	KeyRPCUser       = "rpcuser"
	KeyRPCPassword   = "rpcpassword"
)

// Config holds the wallet settings.
type Config struct {
	DataDir       string
	Network       string
	LogLevel      string
	LogFile       string // empty: stderr
	Confirmations uint32
	Sort          string // output ordering policy, see tx.ParseSortType
	RPCURL        string // empty: network preset
	RPCUser       string
	RPCPassword   string
}

// DefaultDataDir returns ~/.safewallet, or .safewallet when the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".safewallet"
	}
	return filepath.Join(home, ".safewallet")
}

// DefaultConfig returns the settings used for keys absent from the file.
func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		Network:       MainNet.Name,
		LogLevel:      "info",
		LogFile:       "",
		Confirmations: MainNet.DefaultConfirmations,
		Sort:          tx.SortNone.String(),
	}
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// WalletDBPath returns the wallet database path inside dataDir.
func WalletDBPath(dataDir string) string {
	return filepath.Join(dataDir, "wallet.db")
}

// LoadConfig reads a key = value configuration file. Unset keys keep their
// defaults and unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	return LoadConfigWithFlags(path, nil)
}

// LoadConfigWithFlags is LoadConfig with changed flags in fs taking
// precedence over the environment and the file. An empty path reads no file.
func LoadConfigWithFlags(path string, fs *flag.FlagSet) (Config, error) {
	v := newViper()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, errors.Wrapf(ErrConfigNotFound, "%s", path)
			}
			return Config{}, errors.Wrap(err, "config: read file")
		}
		values, err := parseConfig(data)
		if err != nil {
			return Config{}, err
		}
		if err := v.MergeConfigMap(values); err != nil {
			return Config{}, errors.Wrap(err, "config: merge file values")
		}
	}
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, errors.Wrap(err, "config: bind flags")
		}
	}
	return fromViper(v), nil
}

// newViper returns a viper instance seeded with DefaultConfig and reading
// SAFEWALLET_* environment variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault(KeyDataDir, def.DataDir)
	v.SetDefault(KeyNetwork, def.Network)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFile, def.LogFile)
	v.SetDefault(KeyConfirmations, def.Confirmations)
	v.SetDefault(KeySort, def.Sort)
	v.SetDefault(KeyRPCURL, def.RPCURL)
	v.SetDefault(KeyRPCUser, def.RPCUser)
	v.SetDefault(KeyRPCPassword, def.RPCPassword)
	return v
}

func fromViper(v *viper.Viper) Config {
	return Config{
		DataDir:       v.GetString(KeyDataDir),
		Network:       v.GetString(KeyNetwork),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFile:       v.GetString(KeyLogFile),
		Confirmations: v.GetUint32(KeyConfirmations),
		Sort:          v.GetString(KeySort),
		RPCURL:        v.GetString(KeyRPCURL),
		RPCUser:       v.GetString(KeyRPCUser),
		RPCPassword:   v.GetString(KeyRPCPassword),
	}
}

// parseConfig splits data into lowercased keys and trimmed values. Blank
// lines and lines starting with # are skipped; values may contain '='.
func parseConfig(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseKeyValue(line)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidConfigLine, "line %d: %q", n, line)
		}
		values[key] = value
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "config: scan file")
	}
	return values, nil
}

// parseKeyValue splits on the first '='.
func parseKeyValue(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, "=")
	key = strings.ToLower(strings.TrimSpace(key))
	if !ok || key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "config: create directory")
	}

	var b strings.Builder
	b.WriteString("# SAFE Wallet Configuration\n\n")
	fmt.Fprintf(&b, "%s = %s\n", KeyDataDir, cfg.DataDir)
	fmt.Fprintf(&b, "%s = %s\n", KeyNetwork, cfg.Network)
	fmt.Fprintf(&b, "%s = %s\n", KeyLogLevel, cfg.LogLevel)
	fmt.Fprintf(&b, "%s = %s\n", KeyLogFile, cfg.LogFile)
	fmt.Fprintf(&b, "%s = %d\n", KeyConfirmations, cfg.Confirmations)
	fmt.Fprintf(&b, "%s = %s\n", KeySort, cfg.Sort)
	fmt.Fprintf(&b, "%s = %s\n", KeyRPCURL, cfg.RPCURL)
	fmt.Fprintf(&b, "%s = %s\n", KeyRPCUser, cfg.RPCUser)
	fmt.Fprintf(&b, "%s = %s\n", KeyRPCPassword, cfg.RPCPassword)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return errors.Wrap(err, "config: write file")
	}
	return nil
}
