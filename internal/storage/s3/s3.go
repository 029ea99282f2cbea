package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/storage"
)

// Storage talks to AWS S3 or any S3-compatible service. Cloudflare R2 is
// this adapter with a custom endpoint and path-style addressing.
type Storage struct {
	name   string
	bucket string
	client *s3.Client
	retry  storage.RetryPolicy
	log    *log.Logger
}

type Options struct {
	Name      string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Retry     storage.RetryPolicy
	Logger    *log.Logger
}

func New(ctx context.Context, opt Options) (*Storage, error) {
	if opt.Bucket == "" || opt.Region == "" {
		return nil, fmt.Errorf("s3: bucket and region are required")
	}

	creds := credentials.NewStaticCredentialsProvider(opt.AccessKey, opt.SecretKey, "")

	cfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(opt.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opt.Endpoint != "" {
			o.BaseEndpoint = aws.String(opt.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Storage{
		name:   opt.Name,
		bucket: opt.Bucket,
		client: client,
		retry:  opt.Retry,
		log:    opt.Logger.WithPrefix("storage." + opt.Name),
	}, nil
}

func (s *Storage) Name() string { return s.name }

func (s *Storage) Upload(ctx context.Context, localPath, key string) error {
	s.log.Info("uploading", "key", key, "dest", fmt.Sprintf("s3://%s/%s", s.bucket, key))

	attempts, err := s.retry.Do(ctx, func() error {
		return s.putObject(ctx, localPath, key)
	})
	if err != nil {
		return &storage.UploadError{Key: key, Attempts: attempts, Err: err}
	}

	s.log.Info("upload completed", "key", key, "attempts", attempts)
	return nil
}

// putObject is one upload attempt. The file is reopened each time so a retry
// always streams from the start.
func (s *Storage) putObject(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return permanent(fmt.Errorf("open %s: %w", localPath, err))
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return classify(fmt.Errorf("s3 put object: %w", err))
	}
	return nil
}

func (s *Storage) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	var out []storage.Object

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects: %w", err)
		}
		for _, obj := range page.Contents {
			out = append(out, storage.Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	s.log.Debug("listed objects", "prefix", prefix, "count", len(out))
	return out, nil
}

func (s *Storage) Download(ctx context.Context, key, localPath string) error {
	s.log.Info("downloading", "key", key)

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return fmt.Errorf("s3 get object %s: %w", key, storage.ErrNotFound)
		}
		return fmt.Errorf("s3 get object %s: %w", key, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}

	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("download %s: %w", key, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("download %s: %w", key, closeErr)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	// S3 DeleteObject on an absent key succeeds, so delete is idempotent for
	// free here.
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object %s: %w", key, err)
	}
	s.log.Debug("deleted", "key", key)
	return nil
}
