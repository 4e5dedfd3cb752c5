package config

// Message definition message_service YAML structure
type Message struct {
	Port     string         `mapstructure:"port"`
	MongoSQL DatabaseConfig `mapstructure:"mongo"`
	Profile  DatabaseConfig `mapstructure:"profile_pg"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
