package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/datapipeline/trigger-coordinator/internal/catalogclient"
	"github.com/datapipeline/trigger-coordinator/internal/catalogmodel"
	"github.com/datapipeline/trigger-coordinator/internal/config"
	"github.com/datapipeline/trigger-coordinator/internal/orchestrator"
	"github.com/datapipeline/trigger-coordinator/internal/relay"
	"github.com/datapipeline/trigger-coordinator/internal/signing"
	"github.com/datapipeline/trigger-coordinator/pkg/logger"
	"github.com/datapipeline/trigger-coordinator/pkg/metrics"
	"github.com/datapipeline/trigger-coordinator/pkg/otel"
	"github.com/datapipeline/trigger-coordinator/pkg/version"
	"github.com/spf13/cobra"
)

// Command-line flags
var (
	logLevel    string
	logFormat   string
	logOutput   string
	metricsAddr string
)

// MetricsServerShutdownTimeout bounds how long the metrics server gets to
// drain in-flight scrapes when the process is torn down (flush-before-exit
// on a local run; SIGTERM during a Lambda extension shutdown in production).
const MetricsServerShutdownTimeout = 5 * time.Second

// OTelShutdownTimeout bounds how long the tracer provider gets to flush
// pending spans on teardown.
const OTelShutdownTimeout = 5 * time.Second

// CatalogRequestTimeout bounds a single catalog API call.
const CatalogRequestTimeout = 10 * time.Second

func httpClientForCatalog() *http.Client {
	return &http.Client{Timeout: CatalogRequestTimeout}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "coordinator",
		Short: "Trigger Coordinator - resolves and fires downstream pipelines",
		Long: `Trigger Coordinator is invoked once per inbound catalog event. It
resolves the pipelines a data source update or pipeline completion might
affect, decides which of those are ready to fire, and relays the ready
ones to their parked workflow task.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Lambda runtime loop",
		Long: `Start the coordinator as an AWS Lambda handler. Each invocation is
one inbound event; the process itself is long-lived across invocations
within a single warm container, so the logger, tracer, and catalog/relay
clients are all built once at cold start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error). Env: LOG_LEVEL")
	serveCmd.Flags().StringVar(&logFormat, "log-format", "", "Log format (text, json). Env: LOG_FORMAT")
	serveCmd.Flags().StringVar(&logOutput, "log-output", "", "Log output (stdout, stderr, lambda). Env: LOG_OUTPUT")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address the /metrics server binds to, empty disables it. Env: METRICS_ADDR")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Info()
			fmt.Printf("Trigger Coordinator\n")
			fmt.Printf("  Version:    %s\n", info.Version)
			fmt.Printf("  Commit:     %s\n", info.Commit)
			fmt.Printf("  Built:      %s\n", info.BuildDate)
			fmt.Printf("  Tag:        %s\n", info.Tag)
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildLoggerConfig merges LOG_LEVEL/LOG_FORMAT/LOG_OUTPUT from the
// environment with any --log-* flag overrides, flags taking precedence.
func buildLoggerConfig(component string) logger.Config {
	cfg := logger.ConfigFromEnv()
	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}
	if logOutput != "" {
		cfg.Output = logOutput
	}
	cfg.Component = component
	cfg.Version = version.Version
	return cfg
}

// runServe builds every dependency once at cold start and hands control to
// the Lambda runtime, which calls handle for each inbound event.
func runServe() error {
	ctx := context.Background()

	log, err := logger.NewLogger(buildLoggerConfig("trigger-coordinator"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	log.Infof(ctx, "Starting Trigger Coordinator version=%s commit=%s built=%s", version.Version, version.Commit, version.BuildDate)

	cfg, err := config.Load()
	if err != nil {
		errCtx := logger.WithErrorField(ctx, err)
		log.Errorf(errCtx, "Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	sampleRatio := otel.GetTraceSampleRatio(log, ctx)
	tp, err := otel.InitTracer("trigger-coordinator", version.Version, sampleRatio)
	if err != nil {
		errCtx := logger.WithErrorField(ctx, err)
		log.Errorf(errCtx, "Failed to initialize OpenTelemetry")
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), OTelShutdownTimeout)
		defer shutdownCancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			errCtx := logger.WithErrorField(shutdownCtx, err)
			log.Warnf(errCtx, "Failed to shutdown TracerProvider")
		}
	}()

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(log, cfg.MetricsAddr, metrics.Config{
			Component: "trigger-coordinator",
			Version:   version.Version,
			Commit:    version.Commit,
		})
		metricsServer.Start(ctx)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), MetricsServerShutdownTimeout)
			defer shutdownCancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errCtx := logger.WithErrorField(shutdownCtx, err)
				log.Warnf(errCtx, "Failed to shutdown metrics server")
			}
		}()
	}

	log.Info(ctx, "Creating catalog signer and gateway...")
	signer, err := signing.NewSigV4Signer(ctx)
	if err != nil {
		errCtx := logger.WithErrorField(ctx, err)
		log.Errorf(errCtx, "Failed to create catalog request signer")
		return fmt.Errorf("failed to create catalog request signer: %w", err)
	}
	gateway := catalogclient.NewHTTPGateway(signer, httpClientForCatalog(), cfg.EndpointPrefix, cfg.AWSRegion)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		errCtx := logger.WithErrorField(ctx, err)
		log.Errorf(errCtx, "Failed to load AWS configuration for state machine relay")
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	sfnRelay := relay.NewSFNRelay(awsCfg)

	orch := orchestrator.New(gateway, sfnRelay, log, metricsServer)

	log.Info(ctx, "Handing off to the Lambda runtime loop")
	lambda.StartWithOptions(makeHandler(orch, log), lambda.WithContext(ctx))
	return nil
}

// makeHandler closes over the orchestrator and converts a raw input event
// into the validated internal Event the orchestrator expects.
func makeHandler(orch *orchestrator.Orchestrator, log logger.Logger) func(context.Context, catalogmodel.InputEvent) error {
	return func(ctx context.Context, raw catalogmodel.InputEvent) error {
		event, err := catalogmodel.ValidateAndConvert(raw)
		if err != nil {
			errCtx := logger.WithErrorField(ctx, err)
			log.Errorf(errCtx, "Rejected malformed input event")
			return err
		}
		return orch.Handle(ctx, event)
	}
}
