package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/trainspotter/internal/flagx"
	"github.com/dmitrijs2005/trainspotter/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for the timeout field, which allows
// parsing both string values such as "5s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	AWSRegion      string         `json:"aws_region"`
	AWSAccessKey   string         `json:"aws_access_key"`
	AWSSecretKey   string         `json:"aws_secret_key"`
	DynamoEndpoint string         `json:"dynamo_endpoint"`
	UsersTable     string         `json:"users_table"`
	RedisAddr      string         `json:"redis_addr"`
	RedisPassword  string         `json:"redis_password"`
	ElasticAddr    string         `json:"elastic_addr"`
	BackendTimeout timex.Duration `json:"backend_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.AWSRegion = c.AWSRegion
	config.AWSAccessKey = c.AWSAccessKey
	config.AWSSecretKey = c.AWSSecretKey
	config.DynamoEndpoint = c.DynamoEndpoint
	config.UsersTable = c.UsersTable
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.ElasticAddr = c.ElasticAddr
	config.BackendTimeout = time.Duration(c.BackendTimeout.Duration)
}
