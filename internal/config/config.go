package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Coaching CoachingConfig `mapstructure:"coaching"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	// PublicBaseURL is prepended to object keys to build permanent media URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CoachingConfig carries the business limits of the trainer/student workflow.
type CoachingConfig struct {
	FreeTierStudentLimit int           `mapstructure:"free_tier_student_limit"`
	WorkoutTTL           time.Duration `mapstructure:"workout_ttl"`
	SweepInterval        time.Duration `mapstructure:"sweep_interval"`
	PresenceTTL          time.Duration `mapstructure:"presence_ttl"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory, if present, is loaded into the
// process environment first so it can feed the same env overrides.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, coaching.workout_ttl -> COACHING_WORKOUT_TTL
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults()

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file is fine, we rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	return config, config.validate()
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "fitcoach")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("coaching.free_tier_student_limit", 5)
	viper.SetDefault("coaching.workout_ttl", "360h") // 15 days
	viper.SetDefault("coaching.sweep_interval", "1h")
	viper.SetDefault("coaching.presence_ttl", "90s")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{
		"jwt.secret",
		"s3.endpoint", "s3.region", "s3.access_key_id", "s3.secret_access_key",
		"s3.bucket_name", "s3.public_base_url",
		"redis.password",
	} {
		viper.SetDefault(key, "")
	}
}

func (c Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	if c.Coaching.FreeTierStudentLimit <= 0 {
		return errors.New("config: coaching.free_tier_student_limit must be positive")
	}
	if c.Coaching.WorkoutTTL <= 0 || c.Coaching.SweepInterval <= 0 || c.Coaching.PresenceTTL <= 0 {
		return errors.New("config: coaching durations must be positive")
	}
	return nil
}
