package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/elmortem/assetfinder/store"
)

// S3Store persists the cache as one JSON object in an S3 bucket, so a
// build farm can share a warm cache between machines. S3 object writes
// are atomic, readers never observe a half-written cache.
type S3Store struct {
	client     *minio.Client
	bucketName string
	objectName string
}

func NewS3Store(endpoint, bucketName, objectName, accessKey, secretKey string, useSsl bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	if objectName == "" {
		objectName = "assetfinder/cache.json"
	}
	return &S3Store{
		client:     client,
		bucketName: bucketName,
		objectName: objectName,
	}, nil
}

// Name returns the identifier name defined for this store.
func (*S3Store) Name() string {
	return "s3"
}

// Open is part of the lifecycle behaviour and gets called before the first use.
func (ss *S3Store) Open(ctx context.Context) error {
	exists, err := ss.client.BucketExists(ctx, ss.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", ss.bucketName)
	}
	return nil
}

// Close is part of the lifecycle behaviour and gets called when the store is no longer needed.
func (ss *S3Store) Close(ctx context.Context) error {
	return nil
}

func (ss *S3Store) Load(ctx context.Context) (*store.Container, error) {
	obj, err := ss.client.GetObject(ctx, ss.bucketName, ss.objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	blob, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, store.ErrNotExist
		}
		return nil, err
	}

	var c store.Container
	if err := json.Unmarshal(blob, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (ss *S3Store) Save(ctx context.Context, c *store.Container) error {
	blob, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, err = ss.client.PutObject(ctx, ss.bucketName, ss.objectName,
		bytes.NewReader(blob), int64(len(blob)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}
