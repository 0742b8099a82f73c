package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept either strings such as "15m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC     string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	StorageDriver        string         `json:"storage_driver"`
	DatabaseDSN          string         `json:"database_dsn"`
	TokenStoreDriver     string         `json:"token_store_driver"`
	RedisAddr            string         `json:"redis_addr"`
	RedisPassword        string         `json:"redis_password"`
	RedisDB              int            `json:"redis_db"`
	RedisPrefix          string         `json:"redis_prefix"`
	AccessTokenKey       string         `json:"access_token_key"`
	RefreshTokenKey      string         `json:"refresh_token_key"`
	AccessTokenLifetime  timex.Duration `json:"access_token_lifetime"`
	RefreshTokenLifetime timex.Duration `json:"refresh_token_lifetime"`
	TokenIssuer          string         `json:"token_issuer"`
	TokenAudience        string         `json:"token_audience"`
	TokenType            string         `json:"token_type"`
	TokenUsr             string         `json:"token_usr"`
	BasicAuthUsername    string         `json:"basic_auth_username"`
	BasicAuthPassword    string         `json:"basic_auth_password"`
	CookieMaxAge         timex.Duration `json:"cookie_max_age"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	LogFormat            string         `json:"log_format"`
	LogLevel             string         `json:"log_level"`
	EventsDriver         string         `json:"events_driver"`
	KafkaBrokers         []string       `json:"kafka_brokers"`
	KafkaTopic           string         `json:"kafka_topic"`
	RabbitURL            string         `json:"rabbit_url"`
	RabbitQueue          string         `json:"rabbit_queue"`
	S3AccessKey          string         `json:"s3_access_key"`
	S3SecretKey          string         `json:"s3_secret_key"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	PurgeInterval        timex.Duration `json:"purge_interval"`
	PurgeGrace           timex.Duration `json:"purge_grace"`
}

// parseJson overlays the file named by -c/-config onto config. Fields the
// file leaves out keep their current value.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.TokenStoreDriver, c.TokenStoreDriver)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	if c.RedisDB != 0 {
		config.RedisDB = c.RedisDB
	}
	setString(&config.RedisPrefix, c.RedisPrefix)
	setString(&config.AccessTokenKey, c.AccessTokenKey)
	setString(&config.RefreshTokenKey, c.RefreshTokenKey)
	setDuration(&config.AccessTokenLifetime, c.AccessTokenLifetime)
	setDuration(&config.RefreshTokenLifetime, c.RefreshTokenLifetime)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.TokenAudience, c.TokenAudience)
	setString(&config.TokenType, c.TokenType)
	setString(&config.TokenUsr, c.TokenUsr)
	setString(&config.BasicAuthUsername, c.BasicAuthUsername)
	setString(&config.BasicAuthPassword, c.BasicAuthPassword)
	setDuration(&config.CookieMaxAge, c.CookieMaxAge)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.EventsDriver, c.EventsDriver)
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.RabbitURL, c.RabbitURL)
	setString(&config.RabbitQueue, c.RabbitQueue)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.PurgeInterval, c.PurgeInterval)
	setDuration(&config.PurgeGrace, c.PurgeGrace)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
