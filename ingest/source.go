// Package ingest reads vessel specs, block labeling, voxel caches, and
// deadlines from whichever backend currently holds them, normalizing all
// of them to the same raw-bytes-in shape before decode.go takes over.
package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/colinmarc/hdfs/v2"
	"github.com/karrick/godirwalk"
	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/oceanfreight/blockvoyage/cmn"
)

// Source reads a named object's full contents. Every backend below
// implements this the same way the teacher's per-provider backend clients
// each implement a common object-get surface.
type Source interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// List enumerates keys under a prefix, for directory-style ingest runs
	// that sweep an entire labeling drop rather than fetching one file.
	List(ctx context.Context, prefix string) ([]string, error)
}

// StalePruner is implemented by backends that can remove voxel-cache
// entries older than a cutoff, the Go-native form of the source's own
// cache-cleanup script: an explicit, caller-invoked sweep rather than
// automatic eviction on read.
type StalePruner interface {
	PruneStale(ctx context.Context, prefix string, olderThan time.Time) (removed []string, err error)
}

// LocalSource reads from a local directory tree via godirwalk, the
// teacher-adjacent fast local walk used for on-disk ingest drops.
type LocalSource struct{ Root string }

func (s *LocalSource) Get(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Root, key))
}

func (s *LocalSource) List(_ context.Context, prefix string) ([]string, error) {
	var out []string
	root := filepath.Join(s.Root, prefix)
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(s.Root, path)
			if relErr != nil {
				return relErr
			}
			out = append(out, rel)
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, cmn.Wrap(err, "ingest: local walk failed")
	}
	return out, nil
}

// PruneStale removes voxel-cache files under prefix last modified before
// olderThan, mirroring cleanup_voxel_cache.py's disk-space reclaim pass.
func (s *LocalSource) PruneStale(_ context.Context, prefix string, olderThan time.Time) ([]string, error) {
	keys, err := s.List(context.Background(), prefix)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, key := range keys {
		path := filepath.Join(s.Root, key)
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		if info.ModTime().Before(olderThan) {
			if err := os.Remove(path); err != nil {
				return removed, cmn.Wrapf(err, "ingest: prune %s", key)
			}
			removed = append(removed, key)
		}
	}
	return removed, nil
}

// S3Source reads from an AWS S3-compatible bucket.
type S3Source struct {
	Client *s3.Client
	Bucket string
}

func (s *S3Source) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(key)})
	if err != nil {
		return nil, cmn.Wrapf(err, "ingest: s3 get %s/%s", s.Bucket, key)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Source) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{Bucket: aws.String(s.Bucket), Prefix: aws.String(prefix)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, cmn.Wrap(err, "ingest: s3 list")
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// PruneStale removes S3 objects under prefix last modified before
// olderThan, the object-store counterpart to LocalSource.PruneStale.
func (s *S3Source) PruneStale(ctx context.Context, prefix string, olderThan time.Time) ([]string, error) {
	var removed []string
	paginator := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{Bucket: aws.String(s.Bucket), Prefix: aws.String(prefix)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return removed, cmn.Wrap(err, "ingest: s3 list for prune")
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(olderThan) {
				continue
			}
			key := aws.ToString(obj.Key)
			if _, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(key)}); err != nil {
				return removed, cmn.Wrapf(err, "ingest: s3 delete %s", key)
			}
			removed = append(removed, key)
		}
	}
	return removed, nil
}

// AzureSource reads from an Azure Blob Storage container.
type AzureSource struct {
	Client    *azblob.Client
	Container string
}

func (s *AzureSource) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.Client.DownloadStream(ctx, s.Container, key, nil)
	if err != nil {
		return nil, cmn.Wrapf(err, "ingest: azure get %s/%s", s.Container, key)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (s *AzureSource) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pager := s.Client.NewListBlobsFlatPager(s.Container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, cmn.Wrap(err, "ingest: azure list")
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}
	return keys, nil
}

// GCSSource reads from a Google Cloud Storage bucket.
type GCSSource struct {
	Client *gcs.Client
	Bucket string
}

func NewGCSSource(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSSource, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, cmn.Wrap(err, "ingest: gcs client init failed")
	}
	return &GCSSource{Client: client, Bucket: bucket}, nil
}

func (s *GCSSource) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.Client.Bucket(s.Bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, cmn.Wrapf(err, "ingest: gcs get %s/%s", s.Bucket, key)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSSource) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := s.Client.Bucket(s.Bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, cmn.Wrap(err, "ingest: gcs list")
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// HDFSSource reads from an HDFS namenode, for on-prem yard labeling drops.
type HDFSSource struct {
	Client *hdfs.Client
}

func (s *HDFSSource) Get(_ context.Context, key string) ([]byte, error) {
	f, err := s.Client.Open(key)
	if err != nil {
		return nil, cmn.Wrapf(err, "ingest: hdfs open %s", key)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *HDFSSource) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := s.Client.ReadDir(prefix)
	if err != nil {
		return nil, cmn.Wrapf(err, "ingest: hdfs readdir %s", prefix)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Join(prefix, e.Name()))
	}
	return out, nil
}
