package app

import (
	"io"
	"os"

	"nyoka-packages/internal/adapters"
	"nyoka-packages/internal/ports"
	"nyoka-packages/internal/types"
)

// Config carries the client settings a Service is built from.
type Config struct {
	RemoteURL      string
	LocalRoot      string
	HTTPTimeoutSec int
	AssumeYes      bool
	In             io.Reader
	Out            io.Writer
}

type Service struct {
	Remote   ports.RemoteRepositoryPort
	Mirror   ports.LocalMirrorPort
	Prompt   ports.PromptPort
	Reporter ports.ReporterPort
}

func NewService(cfg Config) Service {
	in := cfg.In
	if in == nil {
		in = os.Stdin
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return Service{
		Remote:   adapters.NewRemoteRepositoryHTTPAdapter(cfg.RemoteURL, cfg.HTTPTimeoutSec),
		Mirror:   adapters.NewLocalMirrorFileAdapter(cfg.LocalRoot),
		Prompt:   adapters.NewConsolePromptAdapter(in, out, cfg.AssumeYes),
		Reporter: nopReporter{},
	}
}

func (s Service) reporter() ports.ReporterPort {
	if s.Reporter == nil {
		return nopReporter{}
	}
	return s.Reporter
}

type nopReporter struct{}

func (nopReporter) Closure(types.ResourceID, types.Closure) {}

func (nopReporter) Progress(types.ResourceID, int64, int64) {}
