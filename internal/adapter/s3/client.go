package s3

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"

	creds "github.com/couchcryptid/cyclone-imagery/internal/credentials"
)

// NewClient creates an S3 client in region authenticated with a static key pair.
func NewClient(c creds.Credentials, region string, httpClient *http.Client) (*awss3.S3, error) {
	cfg := aws.NewConfig().
		WithRegion(region).
		WithCredentials(credentials.NewStaticCredentials(c.AccessKeyID, c.SecretAccessKey, ""))
	if httpClient != nil {
		cfg = cfg.WithHTTPClient(httpClient)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return awss3.New(sess), nil
}
