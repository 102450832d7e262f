// Package signing attaches SigV4 credentials to outbound catalog requests.
// It wraps the AWS SDK's signer and default credential provider chain
// rather than reimplementing the SigV4 algorithm.
package signing

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
)

// Signer builds and signs an outbound HTTP request for the catalog API.
type Signer interface {
	Sign(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, region, service string) (*http.Request, error)
}

// SigV4Signer signs requests with AWS Signature Version 4, sourcing
// credentials from the ambient environment via the SDK's default provider
// chain (environment variables, shared config, container/IMDS roles).
type SigV4Signer struct {
	credentials aws.CredentialsProvider
	signer      *awsv4.Signer
}

// NewSigV4Signer loads the default AWS config and fails fast if no
// credentials provider is configured at all.
func NewSigV4Signer(ctx context.Context) (*SigV4Signer, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, apperrors.CredentialsUnavailable("failed to load AWS configuration", err)
	}
	if cfg.Credentials == nil {
		return nil, apperrors.CredentialsMissing("no AWS credentials provider configured")
	}
	return &SigV4Signer{
		credentials: cfg.Credentials,
		signer:      awsv4.NewSigner(),
	}, nil
}

// Sign builds an *http.Request for method/rawURL/headers/body and signs it
// in place for service in region.
func (s *SigV4Signer) Sign(ctx context.Context, method, rawURL string, headers map[string]string, body []byte, region, service string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.RequestBuildFailed("failed to build http request", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return nil, apperrors.CredentialsUnavailable("failed to obtain AWS credentials", err)
	}

	payloadHash := sha256.Sum256(body)
	if err := s.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(payloadHash[:]), service, region, time.Now()); err != nil {
		return nil, apperrors.SigningFailed("failed to generate sigv4 signing instructions", err)
	}

	return req, nil
}
