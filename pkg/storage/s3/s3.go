// Package s3 implements the S3-compatible object store gateway.
// It supports AWS S3, Cloudflare R2, MinIO and other S3-compatible services.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lookloom/media_vault/pkg/storage"
)

const (
	// IngestPartSize is the multipart part size for streaming ingest.
	IngestPartSize = 10 * 1024 * 1024
	// IngestConcurrency bounds in-flight parts, so peak ingest memory is
	// IngestPartSize * IngestConcurrency.
	IngestConcurrency = 4
	// SourceFetchTimeout bounds the whole source download. Generous:
	// sources are large video renders, not API calls.
	SourceFetchTimeout = 10 * time.Minute
)

// Config holds S3 gateway configuration.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PathStyle bool // required for MinIO and most self-hosted stores

	// PublicDomain, when set, fronts public/ objects (CDN or custom
	// domain). Without it PublicURL falls back to a path-style URL on the
	// store endpoint, which is fine for development only.
	PublicDomain string
}

// Storage implements storage.Storage against one S3-compatible bucket.
type Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	uploader      *manager.Uploader
	fetchClient   *http.Client

	bucket       string
	endpoint     string
	region       string
	publicDomain string
}

// New creates an S3 gateway. It performs no network call; the first store
// operation surfaces connectivity problems.
func New(cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("access key and secret key are required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var s3OptFns []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.PathStyle {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3OptFns...)

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = IngestPartSize
		u.Concurrency = IngestConcurrency
		// Failed multipart uploads must not leave orphaned parts behind.
		u.LeavePartsOnError = false
	})

	return &Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		uploader:      uploader,
		fetchClient:   &http.Client{Timeout: SourceFetchTimeout},
		bucket:        cfg.Bucket,
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		region:        cfg.Region,
		publicDomain:  strings.TrimRight(cfg.PublicDomain, "/"),
	}, nil
}

// progressReader counts bytes as the uploader drains the source body.
type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	observe     storage.ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.transferred += int64(n)
		if p.observe != nil {
			p.observe(p.transferred, p.total)
		}
	}
	return n, err
}

// IngestFromURL streams sourceURL into key. The body never lands in memory
// as a whole: the uploader slices it into IngestPartSize parts with at most
// IngestConcurrency in flight. Any failure aborts the multipart upload, so
// no partial object becomes readable at key. The result size is the byte
// count drained from the source, which is exact even when the source omits
// Content-Length (progress observers still see total 0 in that case).
func (s *Storage) IngestFromURL(ctx context.Context, sourceURL, key, contentType string, metadata map[string]string, progress storage.ProgressFunc) (*storage.IngestResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build source request: %w", err)
	}

	resp, err := s.fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch source: unexpected status %d from %s", resp.StatusCode, sourceURL)
	}

	// ContentLength is -1 when the source does not declare one; report 0
	// per the gateway contract.
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	body := &progressReader{r: resp.Body, total: total, observe: progress}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", key, err)
	}

	etag := ""
	if out.ETag != nil {
		etag = strings.Trim(*out.ETag, `"`)
	}
	return &storage.IngestResult{Key: key, Size: body.transferred, ETag: etag}, nil
}

// PutObject uploads from an in-process reader.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64, metadata map[string]string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if len(metadata) > 0 {
		input.Metadata = metadata
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// GetObject returns the object body.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	return out.Body, nil
}

// StatObject HEADs the object and translates the store's not-found shape.
func (s *Storage) StatObject(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("head object %q: %w", key, err)
	}

	info := &storage.ObjectInfo{
		Key:      key,
		Size:     aws.ToInt64(out.ContentLength),
		Metadata: out.Metadata,
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	if out.ETag != nil {
		info.ETag = strings.Trim(*out.ETag, `"`)
	}
	return info, nil
}

// CopyObject server-side copies srcKey to dstKey, metadata included.
func (s *Storage) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	source := url.PathEscape(s.bucket + "/" + srcKey)
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(source),
		// COPY keeps the source object's metadata on the new key.
		MetadataDirective: types.MetadataDirectiveCopy,
	})
	if err != nil {
		if isNotFound(err) {
			return storage.ErrObjectNotFound
		}
		return fmt.Errorf("copy object %q -> %q: %w", srcKey, dstKey, err)
	}
	return nil
}

// DeleteObject removes key. S3 DeleteObject succeeds for absent keys, which
// gives the idempotent-delete contract for free.
func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// DeleteObjects batch-deletes one page of keys in a single request.
func (s *Storage) DeleteObjects(ctx context.Context, objKeys []string) error {
	if len(objKeys) == 0 {
		return nil
	}
	if len(objKeys) > storage.MaxListPageSize {
		return fmt.Errorf("batch delete limited to %d keys, got %d", storage.MaxListPageSize, len(objKeys))
	}

	ids := make([]types.ObjectIdentifier, 0, len(objKeys))
	for _, key := range objKeys {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: ids,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("batch delete %d objects: %w", len(objKeys), err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("batch delete: %d keys failed, first %q: %s",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

// ListObjects returns one ListObjectsV2 page under prefix.
func (s *Storage) ListObjects(ctx context.Context, prefix string, maxKeys int32, token string) (*storage.ListPage, error) {
	if maxKeys <= 0 || maxKeys > storage.MaxListPageSize {
		maxKeys = storage.MaxListPageSize
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxKeys),
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects %q: %w", prefix, err)
	}

	page := &storage.ListPage{
		Objects: make([]storage.ObjectInfo, 0, len(out.Contents)),
	}
	for _, obj := range out.Contents {
		info := storage.ObjectInfo{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		}
		if obj.LastModified != nil {
			info.LastModified = *obj.LastModified
		}
		if obj.ETag != nil {
			info.ETag = strings.Trim(*obj.ETag, `"`)
		}
		page.Objects = append(page.Objects, info)
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// PresignUpload authorizes one direct PUT of contentType to key.
func (s *Storage) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*storage.PresignedUpload, error) {
	if expires <= 0 {
		expires = storage.DefaultPresignUploadExpiry
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := s.presignClient.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return nil, fmt.Errorf("presign upload %q: %w", key, err)
	}
	return &storage.PresignedUpload{URL: result.URL, Key: key}, nil
}

// PresignView authorizes one direct GET of key.
func (s *Storage) PresignView(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = storage.DefaultPresignViewExpiry
	}

	result, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign view %q: %w", key, err)
	}
	return result.URL, nil
}

// PublicURL concatenates the public domain, falling back to a path-style
// URL on the store endpoint (development only).
func (s *Storage) PublicURL(key string) string {
	if s.publicDomain != "" {
		return s.publicDomain + "/" + key
	}
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// Type returns "s3" as the backend identifier.
func (s *Storage) Type() string {
	return "s3"
}

// trashLifecycleRuleID names the rule this service owns. Other rules on
// the bucket are left alone.
const trashLifecycleRuleID = "trash-expiry"

// EnsureTrashLifecycle installs a bucket lifecycle rule expiring objects
// under prefix after retentionDays. The store purges trash on its own; the
// service only has to distinguish "expired" from "never existed" afterward.
// Existing rules are read first and carried over, so only the rule with
// trashLifecycleRuleID is replaced.
func (s *Storage) EnsureTrashLifecycle(ctx context.Context, prefix string, retentionDays int32) error {
	if retentionDays <= 0 {
		retentionDays = 1
	}

	var existing []types.LifecycleRule
	current, err := s.client.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// A bucket with no lifecycle configuration answers with an error,
		// not an empty rule set.
		if !strings.Contains(err.Error(), "NoSuchLifecycleConfiguration") {
			return fmt.Errorf("get lifecycle configuration: %w", err)
		}
	} else {
		existing = current.Rules
	}

	rule := types.LifecycleRule{
		ID:     aws.String(trashLifecycleRuleID),
		Status: types.ExpirationStatusEnabled,
		Filter: &types.LifecycleRuleFilter{
			Prefix: aws.String(prefix),
		},
		Expiration: &types.LifecycleExpiration{
			Days: aws.Int32(retentionDays),
		},
	}

	_, err = s.client.PutBucketLifecycleConfiguration(ctx, &s3.PutBucketLifecycleConfigurationInput{
		Bucket: aws.String(s.bucket),
		LifecycleConfiguration: &types.BucketLifecycleConfiguration{
			Rules: mergeLifecycleRules(existing, rule),
		},
	})
	if err != nil {
		return fmt.Errorf("put lifecycle rule for %q: %w", prefix, err)
	}
	return nil
}

// mergeLifecycleRules replaces the rule sharing the new rule's ID and keeps
// everything else in order, appending the new rule at the end.
func mergeLifecycleRules(existing []types.LifecycleRule, rule types.LifecycleRule) []types.LifecycleRule {
	merged := make([]types.LifecycleRule, 0, len(existing)+1)
	for _, r := range existing {
		if aws.ToString(r.ID) == aws.ToString(rule.ID) {
			continue
		}
		merged = append(merged, r)
	}
	return append(merged, rule)
}

// isNotFound recognizes the store's not-found error shapes so callers only
// ever see storage.ErrObjectNotFound.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	// Some S3-compatible stores answer HEAD with a bare 404.
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404")
}
