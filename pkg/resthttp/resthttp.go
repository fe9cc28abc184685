// Package resthttp holds the shared HTTP client for outbound feed calls.
package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	once   sync.Once
	client *resty.Client
)

// Client returns the shared resty client. Feed payloads are small JSON
// bodies, so one client with a fixed timeout covers every caller.
func Client() *resty.Client {
	once.Do(func() {
		client = resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(10 * time.Second)
	})

	return client
}

// Request builds a request bound to ctx.
func Request(ctx context.Context) *resty.Request {
	return Client().R().SetContext(ctx)
}

// ParseResponse decodes the body into obj. Non-2xx responses surface as
// errors carrying the raw body, which is what feed operators ask for first.
func ParseResponse(r *resty.Response, obj interface{}) error {
	if !r.IsSuccess() {
		return fmt.Errorf("request failed: %s: %s", r.Status(), r.Body())
	}

	if obj == nil {
		return nil
	}

	return json.Unmarshal(r.Body(), obj)
}
