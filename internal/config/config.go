// Package config loads and validates journal-gatewayd's configuration,
// using a flag-parsing-plus-JSON-schema pattern for the gateway's CLI
// surface.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

const defaultPort = 19531

var schema = `
	{
	  "title": "journal-gatewayd config validation schema",
	  "type": "object",
	  "properties": {
	    "port": {
	      "type": "integer",
	      "minimum": 1,
	      "maximum": 65535
	    },
	    "verbose": {
	      "type": "boolean"
	    },
	    "key": {
	      "type": "string"
	    },
	    "cert": {
	      "type": "string"
	    }
	  },
	  "additionalProperties": false
	}`

// Config is journal-gatewayd's resolved configuration.
type Config struct {
	Port    int    `json:"port"`
	Verbose bool   `json:"verbose"`
	Key     string `json:"key"`
	Cert    string `json:"cert"`
}

// Default returns a Config populated with the documented defaults (port
// 19531, no TLS).
func Default() Config {
	return Config{Port: defaultPort}
}

// LoadFile reads and validates a JSON config file, overriding defaults with
// whatever the file supplies.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := validate(gojsonschema.NewStringLoader(string(b))); err != nil {
		return cfg, err
	}

	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the resolved Config against the same schema and the
// CLI-level requirement that Key and Cert are specified together.
func (c Config) Validate() error {
	if err := validate(gojsonschema.NewGoLoader(c)); err != nil {
		return err
	}
	if (c.Key == "") != (c.Cert == "") {
		return errors.New("--key and --cert must be specified together")
	}
	return nil
}

func validate(loader gojsonschema.JSONLoader) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	result, err := gojsonschema.Validate(schemaLoader, loader)
	if err != nil {
		return err
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			logrus.Error(e)
		}
		return fmt.Errorf("config validation failed")
	}
	return nil
}
