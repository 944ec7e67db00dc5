// SPDX-License-Identifier: GPL-3.0-or-later
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const DefaultDiscoveryUrl = "https://emailsettings.firetrust.com/settings"

type Config struct {
	Database string

	DiscoveryUrl string

	FetchLimit         int
	ImapTimeoutSeconds int

	Loglevel *string
}

func ReadConfig(filename string) (*Config, error) {
	config := &Config{
		Database:           "butler.db",
		DiscoveryUrl:       DefaultDiscoveryUrl,
		FetchLimit:         5,
		ImapTimeoutSeconds: 20,
	}

	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if err := validateNonEmptyStringField(c.Database, "Database name must not be empty, set to a filename for the sqlite database"); err != nil {
		return err
	}

	if err := validateNonEmptyStringField(c.DiscoveryUrl, "DiscoveryUrl must not be empty, set to the settings-lookup endpoint"); err != nil {
		return err
	}

	if c.FetchLimit <= 0 {
		return fmt.Errorf("FetchLimit must be positive, got %d", c.FetchLimit)
	}

	if c.ImapTimeoutSeconds <= 0 {
		return fmt.Errorf("ImapTimeoutSeconds must be positive, got %d", c.ImapTimeoutSeconds)
	}

	return nil
}

func validateNonEmptyStringField(field string, err string) error {
	if len(strings.TrimSpace(field)) == 0 {
		return errors.New(err)
	}

	return nil
}
