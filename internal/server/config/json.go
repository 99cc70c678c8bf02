package config

import (
	"encoding/json"
	"os"
	"time"
)

// duration allows JSON interval fields to be specified either as strings
// such as "1h30m" or as integer nanoseconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return &json.UnsupportedTypeError{}
	}
}

// jsonConfig is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
// Absent fields keep their current (default) values.
type jsonConfig struct {
	EndpointAddr                 *string   `json:"endpoint_addr"`
	DatabaseDSN                  *string   `json:"database_dsn"`
	SecretKey                    *string   `json:"secret_key"`
	SigningAlgorithm             *string   `json:"signing_algorithm"`
	AccessTokenValidityDuration  *duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *duration `json:"refresh_token_validity_duration"`
	RedisAddr                    *string   `json:"redis_addr"`
	CacheTTL                     *duration `json:"cache_ttl"`
	PublicBaseURL                *string   `json:"public_base_url"`
	SMTPHost                     *string   `json:"smtp_host"`
	SMTPPort                     *int      `json:"smtp_port"`
	SMTPUsername                 *string   `json:"smtp_username"`
	SMTPPassword                 *string   `json:"smtp_password"`
	MailFrom                     *string   `json:"mail_from"`
	S3RootUser                   *string   `json:"s3_root_user"`
	S3RootPassword               *string   `json:"s3_root_password"`
	S3Bucket                     *string   `json:"s3_bucket"`
	S3Region                     *string   `json:"s3_region"`
	S3BaseEndpoint               *string   `json:"s3_base_endpoint"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *duration) {
	if src != nil {
		*dst = src.Duration
	}
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c/-config command-line
// flags; if neither is set, no JSON file is loaded. An unreadable file or
// invalid JSON is a startup error and panics.
func parseJson(config *Config) {
	jsonConfigFile := jsonConfigPathFromFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.RedisAddr, c.RedisAddr)
	setDuration(&config.CacheTTL, c.CacheTTL)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}
