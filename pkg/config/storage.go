package config

// StorageConfig selects the document storage backend ("local" or "s3")
type StorageConfig struct {
	Mode      string
	UploadDir string
	AWSRegion string
	AWSBucket string
	KeyPrefix string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:      getEnv("STORAGE_MODE", "local"),
		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		AWSBucket: getEnv("AWS_BUCKET", "metricshub-documents"),
		KeyPrefix: getEnv("STORAGE_KEY_PREFIX", "documents"),
	}
}
