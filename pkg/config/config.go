package config

import "time"

// Inspection definition inspection_service YAML structure
type Inspection struct {
	Port string `mapstructure:"port"`
	IP   string `mapstructure:"ip"`

	Wing       string        `mapstructure:"wing"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	Mongo   DatabaseConfig `mapstructure:"mongo"`
	MinIO   MinIOConfig    `mapstructure:"minio"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Kafka   KafkaConfig    `mapstructure:"kafka"`
	Storage StorageConfig  `mapstructure:"storage"`
	Auth    AuthConfig     `mapstructure:"auth"`
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

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	BucketName    string `mapstructure:"bucket_name"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	RedisDB int    `mapstructure:"redis_db"`
}

// KafkaConfig definition kafka audit topic setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// StorageConfig definition video storage setting
type StorageConfig struct {
	// Mode selects the configured placement targets: "local", "remote" or "both".
	Mode         string   `mapstructure:"mode"`
	UploadDir    string   `mapstructure:"upload_dir"`
	ThumbDir     string   `mapstructure:"thumb_dir"`
	FFmpegPath   string   `mapstructure:"ffmpeg_path"`
	AllowedExts  []string `mapstructure:"allowed_extensions"`
	RemoteFolder string   `mapstructure:"remote_folder"`
}

// AuthConfig definition fallback credential setting
type AuthConfig struct {
	RosterPath string `mapstructure:"roster_path"`
	// SuperAdminCAPID and the bcrypt hash of its password gate the
	// super-admin fallback login when SSO is not in play.
	SuperAdminCAPID        string   `mapstructure:"super_admin_capid"`
	SuperAdminPasswordHash string   `mapstructure:"super_admin_password_hash"`
	AdminDutyPositions     []string `mapstructure:"admin_duty_positions"`
}
