package i18n

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Source yields raw catalog files.
type Source interface {
	// Name describes the source in logs.
	Name() string

	// Files returns every catalog file. It may block on I/O.
	Files(ctx context.Context) ([]File, error)
}

//go:embed locales/*/*.yaml
var embedded embed.FS

// FSSource reads <root>/<locale>/<namespace>.yaml from a filesystem.
type FSSource struct {
	FS    fs.FS
	Root  string
	Label string
}

// Embedded returns the catalogs compiled into the binary.
func Embedded() *FSSource {
	return &FSSource{FS: embedded, Root: "locales", Label: "embed"}
}

// Dir returns a source reading catalogs from a directory on disk.
func Dir(dir string) *FSSource {
	return &FSSource{FS: os.DirFS(dir), Root: ".", Label: "dir:" + dir}
}

// Name implements Source.
func (s *FSSource) Name() string { return s.Label }

// Files implements Source.
func (s *FSSource) Files(ctx context.Context) ([]File, error) {
	paths, err := fs.Glob(s.FS, path.Join(s.Root, "*", "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(s.FS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		files = append(files, File{Path: p, Data: data})
	}
	return files, nil
}

// S3API is the subset of the S3 client the S3 source needs.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads catalogs stored as <prefix><locale>/<namespace>.yaml in a
// bucket.
type S3Source struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Source creates a source listing bucket under prefix.
func NewS3Source(client S3API, bucket, prefix string) *S3Source {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// Name implements Source.
func (s *S3Source) Name() string { return "s3://" + s.bucket + "/" + s.prefix }

// Files implements Source.
func (s *S3Source) Files(ctx context.Context) ([]File, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list catalogs: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, ".yaml") {
				continue
			}
			// Only <locale>/<namespace>.yaml directly under the prefix.
			if strings.Count(strings.TrimPrefix(*obj.Key, s.prefix), "/") != 1 {
				continue
			}
			keys = append(keys, *obj.Key)
		}
	}

	files := make([]File, 0, len(keys))
	for _, key := range keys {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("get catalog %s: %w", key, err)
		}
		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", key, err)
		}
		files = append(files, File{Path: key, Data: data})
	}
	return files, nil
}
