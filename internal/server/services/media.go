package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/mindbloging/mindbloging/internal/common"
	"github.com/mindbloging/mindbloging/internal/logging"
	sc "github.com/mindbloging/mindbloging/internal/server/config"
	"github.com/mindbloging/mindbloging/internal/server/models"
)

// allowedImageTypes are the content types accepted for avatars and
// featured images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// seams for tests
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	now = time.Now
)

// MediaService hands out presigned S3 upload URLs for user images.
type MediaService struct {
	config *sc.Config
	logger logging.Logger
}

func NewMediaService(cfg *sc.Config, l logging.Logger) *MediaService {
	return &MediaService{config: cfg, logger: l.With("module", "media_service")}
}

// StorageKey returns a fresh object key under the user's prefix.
func StorageKey(userID string, t time.Time) string {
	return fmt.Sprintf("users/%s/%04d/%02d/%02d/%v", userID, t.Year(), t.Month(), t.Day(), uuid.New())
}

func (s *MediaService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns a URL the client can PUT an image of contentType to.
func (s *MediaService) PresignUpload(ctx context.Context, userID, contentType string) (*models.UploadTarget, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !allowedImageTypes[contentType] {
		return nil, invalid("Unsupported image type")
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client setup failed", "error", err)
		return nil, common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	key := StorageKey(userID, now())

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(s.config.UploadURLValidityDuration))
	if err != nil {
		s.logger.Error(ctx, "presign failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &models.UploadTarget{Key: key, URL: req.URL}, nil
}
