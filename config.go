package bedrockproxy

import (
	"fmt"
	"os"
	"strings"
)

const (
	DefaultRegion        = "us-east-1"
	DefaultModelID       = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	DefaultStagePrefix   = "/prod"
	DefaultListenAddr    = ":8080"
	PayloadVersionREST   = "1.0"
	PayloadVersionHTTP   = "2.0"
	// LambdaFunctionEnvKey is set by the Lambda runtime in every function instance.
	LambdaFunctionEnvKey = "AWS_LAMBDA_FUNCTION_NAME"
)

// Config is read once at cold start and never changed afterwards.
type Config struct {
	Region         string
	ModelID        string
	StagePrefix    string
	PayloadVersion string
	ListenAddr     string
	MetricsAddr    string
	InLambda       bool
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	cfg := Config{
		Region:         firstEnv(DefaultRegion, "MODEL_REGION", "BEDROCK_REGION"),
		ModelID:        firstEnv(DefaultModelID, "MODEL_ID", "BEDROCK_MODEL_ID"),
		StagePrefix:    DefaultStagePrefix,
		PayloadVersion: firstEnv(PayloadVersionREST, "GATEWAY_PAYLOAD_VERSION"),
		ListenAddr:     firstEnv(DefaultListenAddr, "LISTEN_ADDR"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		InLambda:       os.Getenv(LambdaFunctionEnvKey) != "",
	}
	// An explicitly empty STAGE_PREFIX disables the prefixed routes.
	if prefix, ok := os.LookupEnv("STAGE_PREFIX"); ok {
		cfg.StagePrefix = normalizePrefix(prefix)
	}

	switch cfg.PayloadVersion {
	case PayloadVersionREST, PayloadVersionHTTP:
	default:
		return cfg, fmt.Errorf("unsupported GATEWAY_PAYLOAD_VERSION %q, want %q or %q",
			cfg.PayloadVersion, PayloadVersionREST, PayloadVersionHTTP)
	}
	return cfg, nil
}

func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return fallback
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
