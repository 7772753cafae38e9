// Package otel wires OpenTelemetry tracing for the repository server and
// the client's transfer calls. Tracing is disabled unless configured.
package otel

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
)

const (
	ProtocolHTTP = "otlphttp"
	ProtocolGRPC = "otlpgrpc"
)

type Config struct {
	Enabled        bool
	Endpoint       string // host:port or URL; empty uses OTEL_EXPORTER_OTLP_ENDPOINT or the protocol default
	Protocol       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

func DefaultConfig() Config {
	return Config{
		Enabled:     false,
		Protocol:    ProtocolHTTP,
		ServiceName: "nyoka-packages",
		SampleRatio: 1.0,
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Protocol {
	case ProtocolHTTP, ProtocolGRPC:
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("otel protocol must be otlphttp or otlpgrpc")
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("otel sample ratio must be between 0 and 1")
	}
	return nil
}
