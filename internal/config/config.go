// Package config loads the coordinator's runtime configuration from its
// environment, failing fast on anything required that's missing.
package config

import (
	"os"

	"github.com/datapipeline/trigger-coordinator/pkg/utils"
)

// Environment variable names this package reads.
const (
	EnvEndpointURL = "ENV_ENDPOINT_URL"
	EnvAWSRegion   = "ENV_AWS_REGION"
	EnvMetricsAddr = "METRICS_ADDR"
)

// Config is everything the coordinator needs to process one invocation.
type Config struct {
	// EndpointPrefix is the catalog API's base URL.
	EndpointPrefix string
	// AWSRegion signs catalog requests and talks to Step Functions.
	AWSRegion string
	// MetricsAddr is the address the Prometheus /metrics server binds to.
	// Empty disables the metrics server.
	MetricsAddr string
}

// Load reads Config from the environment, failing if ENV_ENDPOINT_URL or
// ENV_AWS_REGION is unset. Trace sampling is read separately, via
// otel.GetTraceSampleRatio, since it needs a logger to report what it chose.
func Load() (*Config, error) {
	endpointPrefix, err := utils.GetEnvOrError(EnvEndpointURL)
	if err != nil {
		return nil, err
	}
	awsRegion, err := utils.GetEnvOrError(EnvAWSRegion)
	if err != nil {
		return nil, err
	}

	return &Config{
		EndpointPrefix: endpointPrefix,
		AWSRegion:      awsRegion,
		MetricsAddr:    os.Getenv(EnvMetricsAddr),
	}, nil
}
