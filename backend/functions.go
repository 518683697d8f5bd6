package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rowguard/rowguard-go/routes"
)

// FunctionsClient invokes edge functions.
type FunctionsClient struct {
	client *Client
}

// Invoke calls the named function with a JSON payload and decodes the JSON
// response into out (nil to discard).
func (f *FunctionsClient) Invoke(ctx context.Context, name string, payload any, out any) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("backend: function name required")
	}
	req, err := f.client.newJSONRequest(ctx, http.MethodPost, routes.Functions+"/"+name, payload)
	if err != nil {
		return err
	}
	return f.client.sendJSON(req, out)
}
