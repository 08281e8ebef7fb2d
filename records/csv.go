package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

// Source yields the records of one upload.
type Source interface {
	// Name identifies the upload for logging, e.g. the file or object name.
	Name() string
	Records(ctx context.Context) ([]Record, error)
}

// ReadCSV reads an upload from r. The first row is the header; cells are kept
// as strings, and missing trailing cells are left absent from the record so
// the normalizers see them as unset.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("records: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("records: empty upload")
	}
	header := rows[0]
	result := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			}
		}
		result = append(result, rec)
	}
	return result, nil
}

// FileSource reads an upload from the local filesystem.
type FileSource struct {
	Path string
}

// Name returns the base name of the file.
func (f FileSource) Name() string {
	return filepath.Base(f.Path)
}

// Records reads and parses the file.
func (f FileSource) Records(ctx context.Context) ([]Record, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("records: opening %s: %w", f.Path, err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// BucketSource fetches an upload object from the staging bucket, mirroring a
// storage-triggered invocation.
type BucketSource struct {
	Client *minio.Client
	Bucket string
	Object string
}

// Name returns the object key of the upload.
func (b BucketSource) Name() string {
	return b.Object
}

// Records fetches and parses the object.
func (b BucketSource) Records(ctx context.Context) ([]Record, error) {
	obj, err := b.Client.GetObject(ctx, b.Bucket, b.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("records: fetching %s/%s: %w", b.Bucket, b.Object, err)
	}
	defer obj.Close()
	return ReadCSV(obj)
}
