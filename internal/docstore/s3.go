package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/xxxsen/normhelper/internal/config"
	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

type s3Config struct {
	Endpoint     string `json:"endpoint"`
	Region       string `json:"region"`
	AccessKeyID  string `json:"access_key_id"`
	SecretKey    string `json:"secret_key"`
	Bucket       string `json:"bucket"`
	Prefix       string `json:"prefix"`
	UsePathStyle bool   `json:"use_path_style"`
}

type s3Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	maxBytes int64
}

func init() {
	Register("s3", createS3Store)
}

func createS3Store(cfg config.DocStoreConfig) (Store, error) {
	conf := &s3Config{}
	if err := decodeConfig(cfg.Data, conf); err != nil {
		return nil, err
	}
	if conf.Bucket == "" || conf.AccessKeyID == "" || conf.SecretKey == "" {
		return nil, fmt.Errorf("s3 doc store bucket/access_key_id/secret_key are required")
	}
	if conf.Region == "" {
		conf.Region = "us-east-1"
	}
	awscfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(conf.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("init s3 config: %w", err)
	}
	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})
	return &s3Store{
		client:   client,
		bucket:   conf.Bucket,
		prefix:   strings.Trim(conf.Prefix, "/"),
		maxBytes: cfg.MaxDocumentBytes,
	}, nil
}

func (s *s3Store) Load(ctx context.Context, id string) (*model.DocumentContent, error) {
	if strings.Contains(id, "/") || strings.Contains(id, "\\") {
		return nil, apperr.Newf(apperr.KindValidation, "invalid document id %q", id)
	}
	key := id
	if s.prefix != "" {
		key = path.Join(s.prefix, id)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, apperr.Wrap(apperr.KindDocumentNotFound, err)
		}
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err)
	}
	declared := aws.ToString(out.ContentType)
	if declared == "" {
		declared = mimeTypeByExtension(id)
	}
	return finalizeContent(id, data, declared, s.maxBytes)
}

func (s *s3Store) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}
	var ids []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, err)
		}
		for _, obj := range page.Contents {
			name := path.Base(aws.ToString(obj.Key))
			if !isCatalogFile(name) {
				continue
			}
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
