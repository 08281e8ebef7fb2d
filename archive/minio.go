package archive

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinioClient connects to the object store holding uploads and archived
// messages.
func NewMinioClient(endpoint string, accessKey string, secretKey string, useSSL bool) (*minio.Client, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: connecting to object store %s: %w", endpoint, err)
	}
	return client, nil
}
