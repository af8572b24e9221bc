package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// FolderAudio is the S3 prefix for uploaded practice recordings.
const FolderAudio = "audio"

// AllowedAudioExtensions maps accepted upload extensions to their MIME type.
var AllowedAudioExtensions = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	AudioBucket     string
	PublicBaseURL   string
}

// S3 stores practice recordings in a public-read bucket.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the default credential chain.
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		logger.Info("S3 client using static credentials", zap.String("region", cfg.Region), zap.String("audio_bucket", cfg.AudioBucket))
	} else {
		logger.Warn("S3 client using default credential chain")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	return &S3{client: client, uploader: uploader, cfg: cfg, logger: logger}, nil
}

// ValidateAudioFile reports whether filename has an accepted audio extension.
func ValidateAudioFile(filename string) bool {
	_, ok := AllowedAudioExtensions[strings.ToLower(path.Ext(filename))]
	return ok
}

// ContentTypeForFilename returns the MIME type for an audio filename extension.
func ContentTypeForFilename(filename string) string {
	if ct, ok := AllowedAudioExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// AudioKey returns the object key for a recording: audio/{user_id}/{unix_nano}_{filename}.
func AudioKey(userID, filename string, at time.Time) string {
	name := strconv.FormatInt(at.UnixNano(), 10) + "_" + path.Base(filename)
	return path.Join(FolderAudio, userID, name)
}

// PublicObjectURL returns the public URL for a key in the audio bucket.
func PublicObjectURL(cfg S3Config, key string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.AudioBucket, cfg.Region, key)
}

// UploadAudio streams a recording to the audio bucket and returns its public URL.
func (s *S3) UploadAudio(ctx context.Context, userID, filename string, body io.Reader, size int64) (string, string, error) {
	key := AudioKey(userID, filename, time.Now().UTC())
	var contentLength *int64
	if size > 0 {
		contentLength = aws.Int64(size)
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.AudioBucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(ContentTypeForFilename(filename)),
		ContentLength: contentLength,
	})
	if err != nil {
		return "", "", fmt.Errorf("upload audio: %w", err)
	}
	s.logger.Debug("audio uploaded", zap.String("key", key), zap.Int64("size", size))
	return PublicObjectURL(s.cfg, key), key, nil
}

// DeleteAudio removes a recording from the audio bucket.
func (s *S3) DeleteAudio(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.AudioBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
