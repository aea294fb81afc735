package supabase

import (
	"context"
	"fmt"

	supa "github.com/nedpals/supabase-go"
)

// Client adapts the Supabase SDK to Caller.
type Client struct {
	client *supa.Client
}

func NewClient(url, key string) (*Client, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase URL and key must both be set")
	}
	return &Client{client: supa.CreateClient(url, key)}, nil
}

// CallRPC posts params to /rest/v1/rpc/<name> and decodes the response into
// out. The request is bound to ctx.
func (c *Client) CallRPC(ctx context.Context, name string, params map[string]any, out any) error {
	if err := c.client.DB.Rpc(name, params).ExecuteWithContext(ctx, out); err != nil {
		return fmt.Errorf("rpc %s: %w", name, err)
	}
	return nil
}
