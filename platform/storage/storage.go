package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/sehee-xx/DO-DREAM-sub000/config"
	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
	"github.com/sehee-xx/DO-DREAM-sub000/utils"
)

// Service is the PDF blob store. Uploaded documents live in a MinIO/S3
// bucket; the pipeline fetches them to local temp files for processing.
type Service struct {
	Client           *minio.Client
	Config           *minio.Options
	Bucket           string
	StorageType      string
	FileKeyGenerator *utils.FileKeyGenerator
}

func InitStorageService(cfg *config.Config) (*Service, error) {
	var minioClient *minio.Client
	var err error

	// local vs s3
	switch cfg.StorageType {
	case "minio":
		minioClient, err = utils.CreateMinIOClient(cfg)
	case "s3":
		minioClient, err = utils.CreateS3Client(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.StorageType)
	}
	if err != nil {
		logging.Logger.Error("fail InitStorageService", "error", err)
		return nil, err
	}

	keyGenerator := utils.NewFileKeyGenerator(utils.StrategyDateBased, "pdfs")
	ss := &Service{
		Client:           minioClient,
		Config:           &minio.Options{Region: cfg.BucketRegion},
		Bucket:           cfg.BucketName,
		StorageType:      cfg.StorageType,
		FileKeyGenerator: keyGenerator,
	}
	if err := ss.EnsureBucketExists(); err != nil {
		logging.Logger.Error("fail InitStorageService", "error", err)
		return nil, err
	}
	logging.Logger.Info("Storage service initialized",
		"type", cfg.StorageType,
		"bucket", cfg.BucketName,
		"region", cfg.BucketRegion,
	)

	return ss, nil
}

func (ss *Service) EnsureBucketExists() error {
	ctx := context.Background()
	exists, err := ss.Client.BucketExists(ctx, ss.Bucket)
	if err != nil {
		logging.Logger.Error("fail EnsureBucketExists", "error", err)
		return err
	}
	if exists {
		return nil
	}
	err = ss.Client.MakeBucket(ctx, ss.Bucket, minio.MakeBucketOptions{
		Region: ss.Config.Region,
	})
	if err != nil {
		if ss.StorageType == "s3" {
			logging.Logger.Warn("Could not create S3 bucket (might exist or no permission)",
				"bucket", ss.Bucket, "error", err)
			return nil
		}
		logging.Logger.Error("fail EnsureBucketExists", "error", err)
		return err
	}
	logging.Logger.Info("Bucket created", "bucket", ss.Bucket)
	return nil
}

// Upload streams one object into the bucket under fileKey.
func (ss *Service) Upload(ctx context.Context, fileKey string, r io.Reader, size int64, contentType string) error {
	_, err := ss.Client.PutObject(ctx, ss.Bucket, fileKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logging.Logger.Error("fail Upload", "error", err, "fileKey", fileKey)
		return err
	}
	return nil
}

// Download fetches an object into a local file at destPath.
func (ss *Service) Download(ctx context.Context, fileKey, destPath string) error {
	err := ss.Client.FGetObject(ctx, ss.Bucket, fileKey, destPath, minio.GetObjectOptions{})
	if err != nil {
		logging.Logger.Error("fail Download", "error", err, "fileKey", fileKey)
		return err
	}
	return nil
}

func (ss *Service) Delete(ctx context.Context, fileKey string) error {
	return ss.Client.RemoveObject(ctx, ss.Bucket, fileKey, minio.RemoveObjectOptions{})
}

func (ss *Service) GeneratePresignedPostUpload(filename string, maxFileSize int64, fileID uint) (*models.PresignedUploadResp, error) {
	fileKey := ss.FileKeyGenerator.GenerateFileKey(filename, "")

	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(ss.Bucket); err != nil {
		return nil, err
	}
	if err := policy.SetKey(fileKey); err != nil {
		return nil, err
	}
	expires := time.Now().Add(15 * time.Minute)
	if err := policy.SetExpires(expires); err != nil {
		return nil, err
	}
	if maxFileSize > 0 {
		if err := policy.SetContentLengthRange(1, maxFileSize); err != nil {
			return nil, err
		}
	}
	if err := policy.SetContentType("application/pdf"); err != nil {
		return nil, err
	}

	postURL, formData, err := ss.Client.PresignedPostPolicy(context.Background(), policy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned POST: %w", err)
	}

	return &models.PresignedUploadResp{
		FileID:    fileID,
		UploadURL: postURL.String(),
		FileKey:   fileKey,
		Fields:    formData,
		Expires:   expires,
		Provider:  ss.StorageType,
	}, nil
}

func (ss *Service) GeneratePresignedGetDownload(fileKey string, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		return "", fmt.Errorf("expiration must be positive")
	}
	presignedURL, err := ss.Client.PresignedGetObject(
		context.Background(),
		ss.Bucket,
		fileKey,
		expiration,
		nil,
	)
	if err != nil {
		logging.Logger.Error("fail GeneratePresignedGetDownload", "error", err)
		return "", err
	}
	return presignedURL.String(), nil
}

func (ss *Service) FileExists(fileKey string) (bool, error) {
	_, err := ss.Client.StatObject(context.Background(), ss.Bucket, fileKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
