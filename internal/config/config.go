// Package config handles configuration for the backend functions,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings shared by every Trainspotter function.
//
// Fields:
//   - AWSRegion / AWSAccessKey / AWSSecretKey: credentials for DynamoDB.
//   - DynamoEndpoint: base endpoint override, used with a local DynamoDB.
//   - UsersTable: DynamoDB table holding account records.
//   - RedisAddr / RedisPassword: cache backend settings.
//   - ElasticAddr: Elasticsearch node URL for journey/spotting documents.
//   - BackendTimeout: client-level timeout applied to backend connections.
//     Individual operations are not retried and carry no timeouts of their
//     own.
type Config struct {
	AWSRegion      string
	AWSAccessKey   string
	AWSSecretKey   string
	DynamoEndpoint string
	UsersTable     string
	RedisAddr      string
	RedisPassword  string
	ElasticAddr    string
	BackendTimeout time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.AWSRegion = "us-east-2"
	c.AWSAccessKey = "local"
	c.AWSSecretKey = "local"
	c.DynamoEndpoint = "http://127.0.0.1:8000/"
	c.UsersTable = "users"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPassword = ""
	c.ElasticAddr = "http://127.0.0.1:9200"
	c.BackendTimeout = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
