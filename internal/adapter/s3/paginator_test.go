package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-imagery/internal/observability"
)

const testBucket = "noaa-goes16"

// fakeLister serves pages in order; page i is returned for token "" (i=0) or "tok-i".
type fakeLister struct {
	pages  [][]string
	err    error
	errAt  int
	inputs []awss3.ListObjectsV2Input
}

func (f *fakeLister) ListObjectsV2WithContext(_ aws.Context, in *awss3.ListObjectsV2Input, _ ...request.Option) (*awss3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, *in)

	page := 0
	if tok := aws.StringValue(in.ContinuationToken); tok != "" {
		for i := range f.pages {
			if tok == pageToken(i) {
				page = i
			}
		}
	}
	if f.err != nil && page == f.errAt {
		return nil, f.err
	}

	out := &awss3.ListObjectsV2Output{}
	for _, k := range f.pages[page] {
		out.Contents = append(out.Contents, &awss3.Object{Key: aws.String(k)})
	}
	if page+1 < len(f.pages) {
		out.NextContinuationToken = aws.String(pageToken(page + 1))
		out.IsTruncated = aws.Bool(true)
	}
	return out, nil
}

func pageToken(i int) string {
	return "tok-" + string(rune('0'+i))
}

func TestPaginator_YieldsAllPagesInOrder(t *testing.T) {
	lister := &fakeLister{pages: [][]string{
		{"p/a", "p/b"},
		{"p/c"},
		{"p/d", "p/e"},
	}}
	p := NewPaginator(lister, testBucket, "p/", observability.NewMetricsForTesting())

	keys, err := p.All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"p/a", "p/b", "p/c", "p/d", "p/e"}, keys)
	require.Len(t, lister.inputs, 3)
	assert.Nil(t, lister.inputs[0].ContinuationToken)
	assert.Equal(t, "tok-1", aws.StringValue(lister.inputs[1].ContinuationToken))
	assert.Equal(t, "tok-2", aws.StringValue(lister.inputs[2].ContinuationToken))
	for _, in := range lister.inputs {
		assert.Equal(t, testBucket, aws.StringValue(in.Bucket))
		assert.Equal(t, "p/", aws.StringValue(in.Prefix))
	}
}

func TestPaginator_FiltersByPrefix(t *testing.T) {
	lister := &fakeLister{pages: [][]string{
		{"ABI/2019/100/16/OR_M6C03_a", "ABI/2019/100/16/OR_M6C13_b"},
		{"other/key", "ABI/2019/100/16/OR_M6C03_c"},
	}}
	p := NewPaginator(lister, testBucket, "ABI/2019/100/16/OR_M6C03", observability.NewMetricsForTesting())

	keys, err := p.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ABI/2019/100/16/OR_M6C03_a", "ABI/2019/100/16/OR_M6C03_c"}, keys)
}

func TestPaginator_EmptyPrefixListsBucket(t *testing.T) {
	lister := &fakeLister{pages: [][]string{{"x", "y"}}}
	p := NewPaginator(lister, testBucket, "", observability.NewMetricsForTesting())

	keys, err := p.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, keys)
	assert.Nil(t, lister.inputs[0].Prefix)
}

func TestPaginator_EmptyListing(t *testing.T) {
	lister := &fakeLister{pages: [][]string{{}}}
	p := NewPaginator(lister, testBucket, "none/", observability.NewMetricsForTesting())

	key, ok, err := p.First(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, key)
}

func TestPaginator_ErrorPropagates(t *testing.T) {
	lister := &fakeLister{
		pages: [][]string{{"p/a"}, {"p/b"}},
		err:   errors.New("AccessDenied"),
		errAt: 1,
	}
	p := NewPaginator(lister, testBucket, "p/", observability.NewMetricsForTesting())

	keys, err := p.All(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")
	assert.Contains(t, err.Error(), "s3://noaa-goes16/p/")
	assert.Equal(t, []string{"p/a"}, keys)
	assert.Len(t, lister.inputs, 2, "no retry after failure")
}

func TestPaginator_FirstStopsEarly(t *testing.T) {
	lister := &fakeLister{pages: [][]string{{"p/a", "p/b"}, {"p/c"}}}
	p := NewPaginator(lister, testBucket, "p/", observability.NewMetricsForTesting())

	key, ok, err := p.First(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "p/a", key)
	assert.Len(t, lister.inputs, 1)
}

func TestPaginator_Restartable(t *testing.T) {
	lister := &fakeLister{pages: [][]string{{"p/a"}, {"p/b"}}}
	p := NewPaginator(lister, testBucket, "p/", observability.NewMetricsForTesting())

	first, err := p.All(context.Background())
	require.NoError(t, err)
	second, err := p.All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, lister.inputs, 4)
}

func TestPaginator_Metrics(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	lister := &fakeLister{pages: [][]string{{"p/a", "q/x"}, {"p/b"}}}
	p := NewPaginator(lister, testBucket, "p/", metrics)

	_, err := p.All(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ListPages), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ListKeys), 0)
}
