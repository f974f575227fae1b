package s3

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	awss3 "github.com/aws/aws-sdk-go/service/s3"

	"github.com/couchcryptid/cyclone-imagery/internal/observability"
)

// ObjectLister is the part of s3iface.S3API the paginator needs.
type ObjectLister interface {
	ListObjectsV2WithContext(ctx aws.Context, input *awss3.ListObjectsV2Input, opts ...request.Option) (*awss3.ListObjectsV2Output, error)
}

// Paginator lists every key under a prefix, following continuation tokens.
type Paginator struct {
	client  ObjectLister
	bucket  string
	prefix  string
	metrics *observability.Metrics
}

// NewPaginator creates a Paginator for bucket. An empty prefix lists the whole bucket.
func NewPaginator(client ObjectLister, bucket, prefix string, metrics *observability.Metrics) *Paginator {
	return &Paginator{client: client, bucket: bucket, prefix: prefix, metrics: metrics}
}

// Keys returns a lazy sequence of keys in the order the store returns them.
// Each call starts a fresh listing. A listing error is yielded once with an
// empty key and ends the sequence.
func (p *Paginator) Keys(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		input := &awss3.ListObjectsV2Input{Bucket: aws.String(p.bucket)}
		if p.prefix != "" {
			input.Prefix = aws.String(p.prefix)
		}

		for {
			out, err := p.client.ListObjectsV2WithContext(ctx, input)
			if err != nil {
				yield("", fmt.Errorf("list s3://%s/%s: %w", p.bucket, p.prefix, err))
				return
			}
			p.observePage()

			for _, obj := range out.Contents {
				key := aws.StringValue(obj.Key)
				if !strings.HasPrefix(key, p.prefix) {
					continue
				}
				p.observeKey()
				if !yield(key, nil) {
					return
				}
			}

			token := aws.StringValue(out.NextContinuationToken)
			if token == "" {
				return
			}
			input.ContinuationToken = aws.String(token)
		}
	}
}

// First returns the first key of the sequence, or ok=false when there is none.
// Only the pages needed to reach it are requested.
func (p *Paginator) First(ctx context.Context) (key string, ok bool, err error) {
	for k, err := range p.Keys(ctx) {
		if err != nil {
			return "", false, err
		}
		return k, true, nil
	}
	return "", false, nil
}

// All drains the sequence into a slice.
func (p *Paginator) All(ctx context.Context) ([]string, error) {
	var keys []string
	for k, err := range p.Keys(ctx) {
		if err != nil {
			return keys, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (p *Paginator) observePage() {
	p.metrics.ListPages.Inc()
}

func (p *Paginator) observeKey() {
	p.metrics.ListKeys.Inc()
}
