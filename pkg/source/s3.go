package source

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sifterr "github.com/logsift/logsift/pkg/errors"
)

var (
	s3ClientOnce sync.Once
	s3Client     *s3.Client
	s3ClientErr  error
)

// newS3Client builds an S3 client from the environment. Static credentials
// and a custom endpoint (for MinIO, LocalStack) can be supplied through
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, and LOGSIFT_S3_ENDPOINT.
func newS3Client(ctx context.Context) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if region := os.Getenv("AWS_REGION"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	if id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, secret, os.Getenv("AWS_SESSION_TOKEN")),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, sifterr.Wrap(err, sifterr.CodeRemoteFetch, "failed to load AWS config")
	}

	s3Opts := []func(*s3.Options){}
	if endpoint := os.Getenv("LOGSIFT_S3_ENDPOINT"); endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// openS3 fetches s3://bucket/key and returns the object body.
func openS3(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return nil, err
	}

	s3ClientOnce.Do(func() {
		s3Client, s3ClientErr = newS3Client(ctx)
	})
	if s3ClientErr != nil {
		return nil, s3ClientErr
	}

	out, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, sifterr.Wrap(err, sifterr.CodeRemoteFetch, "failed to fetch s3 object").
			WithContext("bucket", bucket).
			WithContext("key", key)
	}
	return out.Body, nil
}
