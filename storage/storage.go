package storage

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"

	"imageratio/config"
)

var (
	// ErrNotFound is returned when the object does not exist.
	ErrNotFound = errors.New("Object not found")

	// ErrTooLarge is returned when the object is bigger than the fetcher allows.
	ErrTooLarge = errors.New("Object is too large")
)

// S3Fetcher reads whole objects from one bucket.
type S3Fetcher struct {
	S3      s3iface.S3API
	Bucket  string
	MaxSize int64
}

// NewS3Fetcher initialises the S3 client from the config.
func NewS3Fetcher(conf *config.Config) *S3Fetcher {
	awsConf := aws.Config{
		Region:      aws.String(conf.Region),
		Credentials: credentials.NewStaticCredentials(conf.AccessKeyID, conf.SecretAccessKey, ""),
	}
	if conf.Endpoint != "" {
		awsConf.Endpoint = aws.String(conf.Endpoint)
		awsConf.S3ForcePathStyle = aws.Bool(true)
	}
	sess := session.Must(session.NewSessionWithOptions(session.Options{Config: awsConf}))
	return &S3Fetcher{
		S3:      s3.New(sess),
		Bucket:  conf.BucketName,
		MaxSize: conf.MaxBodyBytes,
	}
}

// Fetch reads the object at key.
func (f *S3Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	resp, err := f.S3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get object %s", key)
	}
	defer resp.Body.Close()

	if f.MaxSize > 0 && resp.ContentLength != nil && *resp.ContentLength > f.MaxSize {
		return nil, ErrTooLarge
	}
	r := io.Reader(resp.Body)
	if f.MaxSize > 0 {
		r = io.LimitReader(resp.Body, f.MaxSize+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read object %s", key)
	}
	if f.MaxSize > 0 && int64(len(b)) > f.MaxSize {
		return nil, ErrTooLarge
	}
	return b, nil
}
