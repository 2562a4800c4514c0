// Package function runs the webhook endpoints as AWS Lambda functions behind
// an API Gateway proxy integration. Each function serves one fixed path of
// the regular router, so signature checks and handlers are shared with the
// long-running server.
package function

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/twoofus/server/internal/app"
	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/logger"
	"github.com/twoofus/server/internal/routes"
)

// Loader builds the HTTP handler a function dispatches to.
type Loader func() (http.Handler, error)

// FromEnv configures the app from the environment. Migrations are left to
// the deploy pipeline.
func FromEnv(component string) Loader {
	return func() (http.Handler, error) {
		cfg, err := config.Parse()
		if err != nil {
			return nil, err
		}
		logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, component)

		a, err := app.New(cfg, app.Options{SkipMigrations: true})
		if err != nil {
			return nil, err
		}
		return routes.SetupRoutes(a), nil
	}
}

type Function struct {
	path string
	load Loader

	mu      sync.Mutex
	adapter *httpadapter.HandlerAdapter
}

// New returns a function that serves path. The handler is built on the first
// invocation and reused by warm invocations; a failed build is retried.
func New(path string, load Loader) *Function {
	return &Function{path: path, load: load}
}

// Job serves /webhooks/jobs/{name}.
func Job(name string, load Loader) *Function {
	return New("/webhooks/jobs/"+name, load)
}

// Notify serves /webhooks/notify.
func Notify(load Loader) *Function {
	return New("/webhooks/notify", load)
}

func (f *Function) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	defer logger.Flush()

	adapter, err := f.adapterOnce()
	if err != nil {
		slog.Error("function not configured", "path", f.path, "error", err)
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}

	// The path is fixed by the function; only headers and body come from
	// API Gateway.
	req.HTTPMethod = http.MethodPost
	req.Path = f.path

	resp, err := adapter.ProxyWithContext(context.WithValue(ctx, eventKey{}, req), req)
	if err != nil {
		slog.Warn("invalid proxy request", "path", f.path, "error", err)
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}
	return resp, nil
}

func (f *Function) adapterOnce() (*httpadapter.HandlerAdapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.adapter != nil {
		return f.adapter, nil
	}
	handler, err := f.load()
	if err != nil {
		return nil, err
	}
	f.adapter = httpadapter.New(rawHeaders(handler))
	return f.adapter, nil
}

type eventKey struct{}

// rawHeaders restores header values as API Gateway delivered them. The
// adapter splits values on commas, and webhook signatures contain commas.
func rawHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ev, ok := r.Context().Value(eventKey{}).(events.APIGatewayProxyRequest)
		if ok {
			h := make(http.Header, len(ev.Headers))
			for k, v := range ev.Headers {
				h.Set(k, v)
			}
			for k, values := range ev.MultiValueHeaders {
				h.Del(k)
				for _, v := range values {
					h.Add(k, v)
				}
			}
			r.Header = h
		}
		next.ServeHTTP(w, r)
	})
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
