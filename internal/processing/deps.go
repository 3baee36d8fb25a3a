package processing

import (
	"github.com/five82/panostitch/internal/config"
	"github.com/five82/panostitch/internal/logging"
	"github.com/five82/panostitch/internal/metrics"
	"github.com/five82/panostitch/internal/publish"
)

// NewDeps wires the optional collaborators cfg asks for: a metrics recorder
// when a metrics file is set and an uploader when a bucket is set.
func NewDeps(cfg *config.Config, logger *logging.Logger) (Deps, error) {
	deps := Deps{Logger: logger}

	if cfg.MetricsFile != "" {
		deps.Metrics = metrics.NewRecorder()
	}

	if cfg.UploadBucket != "" {
		uploader, err := publish.NewUploader(publish.StorageConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.UploadBucket,
			Prefix:    cfg.UploadPrefix,
		}, logger.Zap())
		if err != nil {
			return Deps{}, err
		}
		deps.Uploader = uploader
	}

	return deps, nil
}
