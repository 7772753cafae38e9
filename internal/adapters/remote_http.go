package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	circuit "github.com/rubyist/circuitbreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"nyoka-packages/internal/ports"
	"nyoka-packages/internal/shared"
	"nyoka-packages/internal/types"
)

const (
	remoteTracerName  = "nyoka-packages/remote"
	maxErrorBodyBytes = 4096
)

// RemoteRepositoryHTTPAdapter speaks the transfer protocol to a repository
// server. Calls are never retried; repeated transport failures open a
// circuit breaker and later calls fail fast until it closes again.
type RemoteRepositoryHTTPAdapter struct {
	Endpoint string
	Client   *http.Client
	breaker  *circuit.Breaker
}

func NewRemoteRepositoryHTTPAdapter(endpoint string, timeoutSec int) RemoteRepositoryHTTPAdapter {
	timeout := time.Duration(0)
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	return RemoteRepositoryHTTPAdapter{
		Endpoint: strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		Client:   newHTTPClient(timeout),
		breaker:  newRemoteBreaker(),
	}
}

func (a RemoteRepositoryHTTPAdapter) ListResources(ctx context.Context, ns types.Namespace) (map[string]types.ResourceSummary, error) {
	var doc map[string]types.ResourceSummaryDocument
	if err := a.getJSON(ctx, "list resources", resourcePath(ns), &doc); err != nil {
		return nil, err
	}
	return types.SummariesFromDocument(doc), nil
}

func (a RemoteRepositoryHTTPAdapter) ListVersions(ctx context.Context, ns types.Namespace, name string) (types.VersionList, error) {
	var doc types.VersionListDocument
	if err := a.getJSON(ctx, "list versions", resourcePath(ns, name, "versions"), &doc); err != nil {
		return types.VersionList{}, err
	}
	return types.VersionList{Versions: doc.Versions, Latest: doc.LatestVersion}, nil
}

// FetchPayload opens the payload stream. The caller closes Body.
func (a RemoteRepositoryHTTPAdapter) FetchPayload(ctx context.Context, id types.ResourceID) (types.PayloadStream, error) {
	resp, err := a.do(ctx, "fetch payload", http.MethodGet, versionPath(id, "file"), nil, nil, -1)
	if err != nil {
		return types.PayloadStream{}, err
	}
	return types.PayloadStream{
		Body:        resp.Body,
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (a RemoteRepositoryHTTPAdapter) PayloadSize(ctx context.Context, id types.ResourceID) (int64, error) {
	resp, err := a.do(ctx, "payload size", http.MethodHead, versionPath(id, "file"), nil, nil, -1)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, transferError(fmt.Sprintf("payload size of %s is unknown", id), nil)
	}
	return resp.ContentLength, nil
}

func (a RemoteRepositoryHTTPAdapter) FetchClosure(ctx context.Context, id types.ResourceID) (types.Closure, error) {
	var doc types.ClosureDocument
	if err := a.getJSON(ctx, "fetch dependencies", versionPath(id, "dependencies"), &doc); err != nil {
		return nil, err
	}
	return types.ClosureFromDocument(doc), nil
}

func (a RemoteRepositoryHTTPAdapter) ReadManifest(ctx context.Context, id types.ResourceID) (types.Manifest, error) {
	var doc types.ManifestDocument
	if err := a.getJSON(ctx, "fetch manifest", versionPath(id, "manifest"), &doc); err != nil {
		return nil, err
	}
	return types.ManifestFromDocument(doc), nil
}

// Publish uploads payload with manifest carried in the deps query
// parameter. size may be -1 when unknown.
func (a RemoteRepositoryHTTPAdapter) Publish(ctx context.Context, id types.ResourceID, manifest types.Manifest, payload io.Reader, size int64) error {
	deps, err := json.Marshal(types.ManifestToDocument(manifest))
	if err != nil {
		return transferError("failed to encode manifest", err)
	}
	query := url.Values{}
	query.Set("deps", string(deps))
	resp, err := a.do(ctx, "publish", http.MethodPost, versionPath(id), query, payload, size)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

func (a RemoteRepositoryHTTPAdapter) getJSON(ctx context.Context, operation string, path string, out any) error {
	resp, err := a.do(ctx, operation, http.MethodGet, path, nil, nil, -1)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transferError(fmt.Sprintf("%s: invalid response body", operation), err)
	}
	return nil
}

// do sends one request. A 404 is returned as NotFound and any other
// response outside 2xx as a TransferError, with the body closed.
func (a RemoteRepositoryHTTPAdapter) do(ctx context.Context, operation string, method string, path string, query url.Values, body io.Reader, size int64) (*http.Response, error) {
	if a.Endpoint == "" {
		return nil, transferError("remote endpoint is empty", nil)
	}
	target := a.Endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	ctx, span := otel.Tracer(remoteTracerName).Start(ctx, operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	defer span.End()

	if a.breaker != nil && !a.breaker.Ready() {
		err := transferError(fmt.Sprintf("%s: remote %s marked unavailable after repeated failures", operation, a.Endpoint), nil)
		span.SetStatus(codes.Error, "circuit open")
		return nil, err
	}

	var resp *http.Response
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return err
		}
		if size >= 0 {
			req.ContentLength = size
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/octet-stream")
		}
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
		r, err := a.client().Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			defer r.Body.Close()
			return shared.HTTPStatusErrorWithBody(r.StatusCode, target, readErrorBody(r.Body))
		}
		resp = r
		return nil
	}
	var err error
	if a.breaker != nil {
		err = a.breaker.Call(call, 0)
	} else {
		err = call()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, transferError(fmt.Sprintf("%s failed", operation), err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		statusErr := shared.HTTPStatusErrorWithBody(resp.StatusCode, target, readErrorBody(resp.Body))
		span.SetStatus(codes.Error, statusErr.Error())
		if resp.StatusCode == http.StatusNotFound {
			return nil, types.NewError(types.ErrorKindNotFound, fmt.Sprintf("%s: not found on remote", operation), statusErr)
		}
		return nil, transferError(fmt.Sprintf("%s rejected", operation), statusErr)
	}
	return resp, nil
}

func (a RemoteRepositoryHTTPAdapter) client() *http.Client {
	if a.Client == nil {
		return http.DefaultClient
	}
	return a.Client
}

// readErrorBody prefers the server's error message over the raw body.
func readErrorBody(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	var doc types.ErrorDocument
	if err := json.Unmarshal(raw, &doc); err == nil && doc.Message != "" {
		return doc.Message
	}
	return string(raw)
}

func resourcePath(ns types.Namespace, segments ...string) string {
	parts := []string{"", "resources", url.PathEscape(string(ns))}
	for _, segment := range segments {
		parts = append(parts, url.PathEscape(segment))
	}
	return strings.Join(parts, "/")
}

func versionPath(id types.ResourceID, suffix ...string) string {
	segments := append([]string{id.Name, "versions", id.Version}, suffix...)
	return resourcePath(id.Namespace, segments...)
}

func transferError(msg string, cause error) error {
	return types.NewError(types.ErrorKindTransfer, msg, cause)
}

var _ ports.RemoteRepositoryPort = RemoteRepositoryHTTPAdapter{}
