package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Attachment storage. Backend is either "disk" (flat directory under
	// UploadDir) or "s3" (any S3-compatible endpoint).
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"disk"`
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`
	S3Bucket       string `envconfig:"S3_BUCKET" default:"mahfaza-uploads"`
	S3UseSSL       bool   `envconfig:"S3_USE_SSL" default:"false"`

	// Uploads larger than this are rejected before anything is written.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	CookieName       string `envconfig:"SESSION_COOKIE_NAME" default:"mahfaza_session"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
