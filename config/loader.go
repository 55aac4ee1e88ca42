package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML config file and validates it.
// Unknown keys are ignored so one file can be shared with other tools.
func Load(configFile string) (cfg Config, err error) {
	fileContent, err := os.ReadFile(configFile)
	if err != nil {
		err = fmt.Errorf("error read file config %s: %w", configFile, err)
		return
	}

	cfg, err = Parse(fileContent)
	if err != nil {
		err = fmt.Errorf("error parse config %s: %w", configFile, err)
	}

	return
}

// Parse decodes and validates YAML content.
func Parse(content []byte) (cfg Config, err error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(false)
	if err = dec.Decode(&cfg); err != nil {
		return
	}

	err = cfg.Validate()
	return
}

// Validate checks struct tags and the cross references between sections.
func (c Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return err
	}

	if !c.Firebase.Disabled && c.Firebase.CredentialsFile == "" && c.Firebase.CredentialsJSON == "" {
		return fmt.Errorf("firebase: credentialsFile or credentialsJSON is required unless disabled")
	}

	switch c.TokenRepo.Driver {
	case "postgres":
		db, ok := c.DatabaseResources[c.TokenRepo.DBLabel]
		if !ok {
			return fmt.Errorf("tokenRepo: unknown database label '%s'", c.TokenRepo.DBLabel)
		}

		if db.Disable {
			return fmt.Errorf("tokenRepo: database label '%s' is disabled", c.TokenRepo.DBLabel)
		}

	case "redis":
		if _, ok := c.Redis[c.TokenRepo.RedisLabel]; !ok {
			return fmt.Errorf("tokenRepo: unknown redis label '%s'", c.TokenRepo.RedisLabel)
		}
	}

	if c.TokenRepo.Cache.Type == "redis" {
		if _, ok := c.Redis[c.TokenRepo.Cache.RedisLabel]; !ok {
			return fmt.Errorf("tokenRepo.cache: unknown redis label '%s'", c.TokenRepo.Cache.RedisLabel)
		}
	}

	return nil
}
