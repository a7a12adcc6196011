package config

import (
	"flag"
	"os"

	"github.com/mindbloging/mindbloging/internal/flagx"
	"github.com/mindbloging/mindbloging/internal/timex"
)

// parseFlags overlays command-line flags on config.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-r string   gRPC health bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t string   session token validity ("7d", "168h")
//	-g string   Google OAuth client id
//	-o string   frontend origin allowed by CORS
//	-l string   log level
//	-m int      auth requests per minute per IP
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-n string   S3 region
//	-e string   S3 base endpoint
//
// Only these flags are looked at (see flagx.FilterArgs), so -c/-config and
// test flags do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-r", "-d", "-s", "-t", "-g", "-o", "-l", "-m", "-u", "-p", "-b", "-n", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.Func("t", "session token validity", func(v string) error {
		d, err := timex.ParseDuration(v)
		if err != nil {
			return err
		}
		config.TokenValidityDuration = d
		return nil
	})
	fs.StringVar(&config.GoogleClientID, "g", config.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&config.ClientURL, "o", config.ClientURL, "frontend origin")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.LoginRateLimit, "m", config.LoginRateLimit, "auth requests per minute per IP")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "n", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
