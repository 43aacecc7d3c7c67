// Package documents stores rendered invoice PDFs in object storage.
package documents

import (
	"bytes"
	"context"
	"errors"
	"io"

	"wifibilling/internal/common"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// Store is the invoice document repository. Objects are keyed by invoice
// number, one PDF per invoice.
type Store interface {
	Save(ctx context.Context, invoiceNumber string, pdf []byte) (string, error)
	Read(ctx context.Context, invoiceNumber string) ([]byte, error)
	Exists(ctx context.Context, invoiceNumber string) (bool, error)
	Delete(ctx context.Context, invoiceNumber string) error
}

type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the object store and ensures the invoice
// bucket exists.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
		log.Info().Str("bucket", bucket).Msg("created invoice bucket")
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

func objectName(invoiceNumber string) string {
	return invoiceNumber + ".pdf"
}

// Save uploads the PDF, replacing any previous version, and returns the
// object path stored on the invoice record.
func (s *MinioStore) Save(ctx context.Context, invoiceNumber string, pdf []byte) (string, error) {
	name := objectName(invoiceNumber)
	_, err := s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", err
	}
	return s.bucket + "/" + name, nil
}

func (s *MinioStore) Read(ctx context.Context, invoiceNumber string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName(invoiceNumber), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, common.NotFoundErrorf("document for invoice %s not found", invoiceNumber)
		}
		return nil, err
	}
	return data, nil
}

func (s *MinioStore) Exists(ctx context.Context, invoiceNumber string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectName(invoiceNumber), minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MinioStore) Delete(ctx context.Context, invoiceNumber string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName(invoiceNumber), minio.RemoveObjectOptions{})
}
