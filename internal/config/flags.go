package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/trainspotter/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-g string   AWS region
//	-k string   AWS access key
//	-p string   AWS secret key
//	-y string   DynamoDB base endpoint (e.g., "http://127.0.0.1:8000/")
//	-t string   users table name
//	-r string   Redis address (host:port)
//	-w string   Redis password
//	-e string   Elasticsearch node URL
//	-o int      backend client timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-g", "-k", "-p", "-y", "-t", "-r", "-w", "-e", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.AWSAccessKey, "k", config.AWSAccessKey, "AWS access key")
	fs.StringVar(&config.AWSSecretKey, "p", config.AWSSecretKey, "AWS secret key")
	fs.StringVar(&config.DynamoEndpoint, "y", config.DynamoEndpoint, "DynamoDB base endpoint")
	fs.StringVar(&config.UsersTable, "t", config.UsersTable, "users table name")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.RedisPassword, "w", config.RedisPassword, "Redis password")
	fs.StringVar(&config.ElasticAddr, "e", config.ElasticAddr, "Elasticsearch node URL")

	backendTimeout := fs.Int("o", int(config.BackendTimeout.Seconds()), "backend client timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.BackendTimeout = time.Duration(*backendTimeout) * time.Second
}
