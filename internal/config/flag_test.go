package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{
		"testbin",
		"-g", "ap-south-1",
		"-t", "users-stage",
		"-r", "cache:6379",
		"-e", "http://search:9200",
		"-o", "15",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "ap-south-1", cfg.AWSRegion)
	assert.Equal(t, "users-stage", cfg.UsersTable)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, "http://search:9200", cfg.ElasticAddr)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)

	// untouched flags keep their defaults
	assert.Equal(t, "http://127.0.0.1:8000/", cfg.DynamoEndpoint)
}

func Test_parseFlags_KeepsDefaultsWithoutArgs(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "us-east-2", cfg.AWSRegion)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
}
