package config

import (
	"encoding/json"
	"os"

	"github.com/mindbloging/mindbloging/internal/flagx"
	"github.com/mindbloging/mindbloging/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations are
// timex.Duration so "7d", "15m" and integer nanoseconds all work. Fields left
// out of the file keep their current value.
type JsonConfig struct {
	EndpointAddrHTTP          *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC          *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN               *string         `json:"database_dsn"`
	SecretKey                 *string         `json:"secret_key"`
	TokenValidityDuration     *timex.Duration `json:"token_validity_duration"`
	GoogleClientID            *string         `json:"google_client_id"`
	ClientURL                 *string         `json:"client_url"`
	LogLevel                  *string         `json:"log_level"`
	LoginRateLimit            *int            `json:"login_rate_limit"`
	S3RootUser                *string         `json:"s3_root_user"`
	S3RootPassword            *string         `json:"s3_root_password"`
	S3Bucket                  *string         `json:"s3_bucket"`
	S3Region                  *string         `json:"s3_region"`
	S3BaseEndpoint            *string         `json:"s3_base_endpoint"`
	UploadURLValidityDuration *timex.Duration `json:"upload_url_validity_duration"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics: the server must not start with
// a half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.ClientURL, c.ClientURL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.LoginRateLimit != nil {
		config.LoginRateLimit = *c.LoginRateLimit
	}
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.UploadURLValidityDuration != nil {
		config.UploadURLValidityDuration = c.UploadURLValidityDuration.Duration
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
