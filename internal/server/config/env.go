package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by parseEnv. The basic-auth pair and the
// signing keys keep their historical unprefixed names.
const (
	EnvGRPCAddr             = "AUTHKEEPER_GRPC_ADDR"
	EnvHTTPAddr             = "AUTHKEEPER_HTTP_ADDR"
	EnvStorageDriver        = "AUTHKEEPER_STORAGE_DRIVER"
	EnvDatabaseDSN          = "AUTHKEEPER_DATABASE_DSN"
	EnvTokenStoreDriver     = "AUTHKEEPER_TOKEN_STORE"
	EnvRedisAddr            = "AUTHKEEPER_REDIS_ADDR"
	EnvRedisPassword        = "AUTHKEEPER_REDIS_PASSWORD"
	EnvRedisDB              = "AUTHKEEPER_REDIS_DB"
	EnvAccessTokenKey       = "ACCESS_TOKEN_KEY"
	EnvRefreshTokenKey      = "REFRESH_TOKEN_KEY"
	EnvAccessTokenLifetime  = "AUTHKEEPER_ACCESS_TOKEN_LIFETIME"
	EnvRefreshTokenLifetime = "AUTHKEEPER_REFRESH_TOKEN_LIFETIME"
	EnvTokenIssuer          = "AUTHKEEPER_TOKEN_ISSUER"
	EnvTokenAudience        = "AUTHKEEPER_TOKEN_AUDIENCE"
	EnvTokenType            = "AUTHKEEPER_TOKEN_TYPE"
	EnvTokenUsr             = "AUTHKEEPER_TOKEN_USR"
	EnvBasicUsername        = "BASIC_TOKEN_USERNAME"
	EnvBasicPassword        = "BASIC_TOKEN_PASSWORD"
	EnvCookieMaxAge         = "AUTHKEEPER_COOKIE_MAX_AGE"
	EnvLogFormat            = "AUTHKEEPER_LOG_FORMAT"
	EnvLogLevel             = "AUTHKEEPER_LOG_LEVEL"
	EnvEventsDriver         = "AUTHKEEPER_EVENTS_DRIVER"
	EnvKafkaBrokers         = "AUTHKEEPER_KAFKA_BROKERS"
	EnvKafkaTopic           = "AUTHKEEPER_KAFKA_TOPIC"
	EnvRabbitURL            = "AUTHKEEPER_RABBIT_URL"
	EnvRabbitQueue          = "AUTHKEEPER_RABBIT_QUEUE"
	EnvS3AccessKey          = "AUTHKEEPER_S3_ACCESS_KEY"
	EnvS3SecretKey          = "AUTHKEEPER_S3_SECRET_KEY"
	EnvS3Bucket             = "AUTHKEEPER_S3_BUCKET"
	EnvS3Region             = "AUTHKEEPER_S3_REGION"
	EnvS3BaseEndpoint       = "AUTHKEEPER_S3_BASE_ENDPOINT"
	EnvPurgeInterval        = "AUTHKEEPER_PURGE_INTERVAL"
	EnvPurgeGrace           = "AUTHKEEPER_PURGE_GRACE"
)

func parseEnv(c *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvGRPCAddr:         &c.EndpointAddrGRPC,
		EnvHTTPAddr:         &c.EndpointAddrHTTP,
		EnvStorageDriver:    &c.StorageDriver,
		EnvDatabaseDSN:      &c.DatabaseDSN,
		EnvTokenStoreDriver: &c.TokenStoreDriver,
		EnvRedisAddr:        &c.RedisAddr,
		EnvRedisPassword:    &c.RedisPassword,
		EnvAccessTokenKey:   &c.AccessTokenKey,
		EnvRefreshTokenKey:  &c.RefreshTokenKey,
		EnvTokenIssuer:      &c.TokenIssuer,
		EnvTokenAudience:    &c.TokenAudience,
		EnvTokenType:        &c.TokenType,
		EnvTokenUsr:         &c.TokenUsr,
		EnvBasicUsername:    &c.BasicAuthUsername,
		EnvBasicPassword:    &c.BasicAuthPassword,
		EnvLogFormat:        &c.LogFormat,
		EnvLogLevel:         &c.LogLevel,
		EnvEventsDriver:     &c.EventsDriver,
		EnvKafkaTopic:       &c.KafkaTopic,
		EnvRabbitURL:        &c.RabbitURL,
		EnvRabbitQueue:      &c.RabbitQueue,
		EnvS3AccessKey:      &c.S3AccessKey,
		EnvS3SecretKey:      &c.S3SecretKey,
		EnvS3Bucket:         &c.S3Bucket,
		EnvS3Region:         &c.S3Region,
		EnvS3BaseEndpoint:   &c.S3BaseEndpoint,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		EnvAccessTokenLifetime:  &c.AccessTokenLifetime,
		EnvRefreshTokenLifetime: &c.RefreshTokenLifetime,
		EnvCookieMaxAge:         &c.CookieMaxAge,
		EnvPurgeInterval:        &c.PurgeInterval,
		EnvPurgeGrace:           &c.PurgeGrace,
	}
	for name, dst := range durations {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v, ok := lookup(EnvRedisDB); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		c.RedisDB = n
	}
	if v, ok := lookup(EnvKafkaBrokers); ok {
		c.KafkaBrokers = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
