// utils/icons.go
package utils

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"review-trophy-service/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Options configures the Cloudflare R2 bucket trophy icons are published to.
type R2Options struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

func (o R2Options) enabled() bool {
	return o.AccountID != "" && o.AccessKeyID != "" && o.AccessKeySecret != "" && o.Bucket != ""
}

// IconStore resolves trophy icon references to public URLs.
// With R2 configured icons are served from the bucket's CDN, otherwise from staticURL.
type IconStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewIconStore(ctx context.Context, opts R2Options, staticURL string) (*IconStore, error) {
	if !opts.enabled() {
		return &IconStore{baseURL: staticURL}, nil
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", opts.AccountID)
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID, opts.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	baseURL := opts.CDNBaseURL
	if baseURL == "" {
		baseURL = endpoint + "/" + opts.Bucket
	}

	return &IconStore{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		}),
		bucket:  opts.Bucket,
		baseURL: baseURL,
	}, nil
}

// Remote reports whether icons are published to R2.
func (s *IconStore) Remote() bool {
	return s.client != nil
}

// URL returns the public URL for an icon reference such as "rb/images/trophy.png".
func (s *IconStore) URL(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

// PublishIcons uploads each kind's icon from dir to the bucket under the same key.
// No-op without R2.
func (s *IconStore) PublishIcons(ctx context.Context, dir string, kinds []models.TrophyKind) error {
	if !s.Remote() {
		return nil
	}
	for _, k := range kinds {
		if k.IconURL == "" {
			continue
		}
		key := path.Clean(strings.TrimLeft(k.IconURL, "/"))
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(key)))
		if err != nil {
			return fmt.Errorf("failed to open icon for %s: %w", k.ID, err)
		}

		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String(contentType),
		})
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to upload %s to R2: %w", key, err)
		}
	}
	return nil
}
