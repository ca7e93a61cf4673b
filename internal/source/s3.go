package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type s3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
}

type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source materializes a bucket prefix into a temp directory so the scanner
// can treat cloud-hosted corpora like any other root. Each run stages into a
// fresh directory and removes the previous run's copy, so at most one staged
// corpus is on disk at a time.
type s3Source struct {
	client s3API
	bucket string
	prefix string

	mu     sync.Mutex
	staged string
}

func init() {
	Register("s3", createS3Source)
}

func createS3Source(args interface{}) (Source, error) {
	config := &s3Config{}
	if err := decodeConfig(args, config); err != nil {
		return nil, err
	}
	if config.Bucket == "" || config.SecretID == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("s3 bucket/secret_id/secret_key are required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(config.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.SecretID, config.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &s3Source{
		client: client,
		bucket: config.Bucket,
		prefix: strings.Trim(config.Prefix, "/"),
	}, nil
}

func (s *s3Source) Roots(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logutil.GetLogger(ctx).With(zap.String("bucket", s.bucket), zap.String("prefix", s.prefix))
	dir, err := os.MkdirTemp("", "corpus-s3-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}
	count := 0
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			if err := s.download(ctx, key, dir); err != nil {
				logger.Warn("object download failed, skipped", zap.String("key", key), zap.Error(err))
				continue
			}
			count++
		}
	}

	if s.staged != "" {
		if err := os.RemoveAll(s.staged); err != nil {
			logger.Warn("previous staging dir not removed", zap.String("dir", s.staged), zap.Error(err))
		}
	}
	s.staged = dir

	logger.Info("s3 corpus staged", zap.String("dir", dir), zap.Int("objects", count))
	return []string{dir}, nil
}

func (s *s3Source) download(ctx context.Context, key, dir string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer out.Body.Close()

	rel := strings.TrimPrefix(key, s.prefix+"/")
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, out.Body)
	return err
}
