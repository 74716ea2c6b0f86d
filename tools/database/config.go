// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime/pprof"

	"github.com/Fantom-foundation/memtrie/go/backend/db"
	"github.com/naoina/toml"
)

// configFileName is the name of the node configuration in the home directory.
const configFileName = "config.toml"

// nodeConfig is the part of the node configuration describing its stores.
type nodeConfig struct {
	Archive   bool
	Store     db.StoreConfig
	ColdStore *db.StoreConfig `toml:",omitempty"`
}

func defaultNodeConfig() nodeConfig {
	return nodeConfig{Store: db.DefaultStoreConfig()}
}

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// loadConfig reads the node configuration from the given home directory.
// Without a configuration file the defaults are used. Settings missing in
// the file keep their default values.
func loadConfig(home string) (nodeConfig, error) {
	cfg := defaultNodeConfig()
	file := filepath.Join(home, configFileName)
	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return cfg, err
	}
	if cfg.ColdStore != nil {
		cfg.ColdStore = withColdDefaults(*cfg.ColdStore)
	}
	return cfg, nil
}

// withColdDefaults fills in unset cold store settings.
func withColdDefaults(config db.StoreConfig) *db.StoreConfig {
	defaults := db.DefaultColdStoreConfig()
	if config.Path == "" {
		config.Path = defaults.Path
	}
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.CacheSizeMB == 0 {
		config.CacheSizeMB = defaults.CacheSizeMB
	}
	if config.MaxOpenFiles == 0 {
		config.MaxOpenFiles = defaults.MaxOpenFiles
	}
	return &config
}

func (c *nodeConfig) opener(home string) *db.Opener {
	return db.NewOpener(home, c.Archive, c.Store, c.ColdStore)
}

func startCpuProfile(profileName string) error {
	f, err := os.Create(profileName)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	return nil
}

func stopCpuProfile() {
	pprof.StopCPUProfile()
}
