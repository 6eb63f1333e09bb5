package schemaref

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/reoring/schemaref/document"
	"github.com/reoring/schemaref/internal/uri"
)

// S3GetObjectAPI is the subset of *s3.Client used by S3Loader.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads s3://bucket/key locations.
type S3Loader struct {
	client S3GetObjectAPI
	decode document.Options
}

// NewS3Loader returns a loader backed by client, typically s3.NewFromConfig(cfg).
func NewS3Loader(client S3GetObjectAPI, opt document.Options) *S3Loader {
	return &S3Loader{client: client, decode: opt}
}

func (l *S3Loader) LoadResource(ctx context.Context, location string) (any, error) {
	p := uri.Split(location)
	key, err := url.PathUnescape(strings.TrimPrefix(p.Path, "/"))
	if err != nil {
		return nil, resourceError(location, err)
	}
	if p.Authority == "" || key == "" {
		return nil, &Error{Code: CodeResource, URI: location, Message: "expected s3://bucket/key"}
	}
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Authority),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, resourceError(location, err)
	}
	defer out.Body.Close()

	format := document.FormatFromPath(key)
	if format == document.FormatJSON {
		format = document.FormatFromContentType(aws.ToString(out.ContentType))
	}
	doc, err := document.Decode(out.Body, format, l.decode)
	if err != nil {
		return nil, decodeError(location, err)
	}
	return doc, nil
}
