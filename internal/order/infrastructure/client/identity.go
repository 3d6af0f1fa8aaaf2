// Package client holds the HTTP clients through which the order saga talks
// to its collaborators: the identity service and the restaurant service's
// catalog and stock endpoints. Trace context is propagated on every call.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dongju2-lee/sample-micro-app/internal/order/application"
	"github.com/dongju2-lee/sample-micro-app/internal/order/domain"
	"github.com/dongju2-lee/sample-micro-app/pkg/tracing"
)

type IdentityClient struct {
	base string
	hc   *http.Client
}

func NewIdentityClient(base string) *IdentityClient {
	return &IdentityClient{
		base: base,
		hc:   &http.Client{Timeout: 5 * time.Second},
	}
}

type validateResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (c *IdentityClient) Verify(ctx context.Context, credential string) (application.UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/validate", nil)
	if err != nil {
		return application.UserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	tracing.InjectHTTP(ctx, req.Header)

	resp, err := c.hc.Do(req)
	if err != nil {
		return application.UserInfo{}, fmt.Errorf("identity call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return application.UserInfo{}, fmt.Errorf("identity status %d: %w", resp.StatusCode, domain.ErrUnauthenticated)
	}
	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return application.UserInfo{}, fmt.Errorf("identity decode: %w", err)
	}
	return application.UserInfo{UserID: body.UserID, Username: body.Username}, nil
}
