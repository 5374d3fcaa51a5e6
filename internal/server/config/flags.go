package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/vaultbox/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags. Flags win over environment values.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   share base URL (e.g., "https://vault.example.com")
//
// The args are first filtered through flagx.FilterArgs so flags owned by
// other components are ignored. Key material is deliberately not accepted
// on the command line; it comes from the environment only.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-u", "-p", "-b", "-g", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.ShareBaseURL, "l", config.ShareBaseURL, "share base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
