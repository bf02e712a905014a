// Package auth attaches OAuth2 client-credential tokens to upstream requests,
// for geocoding or routing servers hosted behind a token gateway.
package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Conf enables client-credential authentication when ClientID is set.
type Conf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret" validate:"required_with=ClientID"`
	AuthURL      string   `json:"auth_url" validate:"required_with=ClientID,omitempty,url"`
	Scopes       []string `json:"scopes"`
}

// Enabled reports whether credentials are configured.
func (c Conf) Enabled() bool { return c.ClientID != "" }

func (c Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.AuthURL,
		Scopes:       c.Scopes,
	}
}

// HTTPClient returns a client that sends a bearer token with every request
// and fetches a new one once it expires. Without credentials base is
// returned as is. A nil base uses http.DefaultTransport.
func HTTPClient(ctx context.Context, c Conf, base *http.Client) *http.Client {
	if !c.Enabled() {
		return base
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	conf := c.toOauth2Config()
	return conf.Client(ctx)
}
