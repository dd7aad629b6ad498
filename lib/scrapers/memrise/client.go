package memrise

import (
	"context"
	"encoding/json"
	"net/http/cookiejar"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://app.memrise.com"

// oauth client id the official web frontend identifies itself with
const webClientId = "1e739f5e77704b57a703"

const (
	readTimeout  = time.Second * 60
	writeTimeout = time.Second * 30
)

const csrfCookieName = "csrftoken"

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl when empty
	BaseUrl string
}

// NewClient builds a cookie-bearing client. One client owns one session,
// never share the same client between goroutines or processes.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	rawUrl := opts.BaseUrl
	if rawUrl == "" {
		rawUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(rawUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(readTimeout)

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}
	return c, nil
}

// Login performs the current three-step handshake: seed the csrf cookie,
// exchange credentials for an access token, then redeem the token for web
// session cookies. Earlier service revisions accepted a single form POST
// against the login page, that form no longer exists.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/v1.21/web/ensure_csrf")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch csrf cookie")
		return &ConnectionError{Message: "connection failed to ensure_csrf endpoint", Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "csrf endpoint returned an error status")
		return &ConnectionError{Message: "unexpected response from ensure_csrf endpoint: " + res.Status()}
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":  webClientId,
			"grant_type": "password",
			"username":   username,
			"password":   password,
		}).
		// the service rejects token requests without the signin referer
		SetHeader("Referer", c.absUrl("/signin")).
		Post("/v1.21/auth/access_token/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make access token request")
		return &ConnectionError{Message: "connection failed to access_token endpoint", Err: err}
	}
	if err := classifyLoginStatus(res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var token struct {
		AccessToken struct {
			AccessToken string `json:"access_token"`
		} `json:"access_token"`
	}
	err = json.Unmarshal(res.Body(), &token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse access token json")
		return &ParseError{Message: "invalid json from access_token endpoint", Err: err}
	}
	if token.AccessToken.AccessToken == "" {
		span.SetStatus(codes.Error, "access token missing from response")
		return &ParseError{Message: "access_token endpoint response is missing the token"}
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetQueryParam("invalidate_token_after", "true").
		SetQueryParam("token", token.AccessToken.AccessToken).
		Get("/v1.21/auth/web/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to redeem access token")
		return &ConnectionError{Message: "connection failed to web auth endpoint", Err: err}
	}
	if err := classifyLoginStatus(res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func classifyLoginStatus(res *resty.Response) error {
	switch {
	case res.StatusCode() == 403:
		return &AuthenticationError{Message: "authentication failed: " + res.Status()}
	case res.IsError():
		return &ConnectionError{Message: "unexpected response during login: " + res.Status()}
	}
	return nil
}

func (c *Client) absUrl(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	return c.BaseUrl.ResolveReference(ref).String()
}

// csrfToken reads the anti-forgery token fresh from the cookie jar. The
// service may rotate it mid-session so it is never cached at login.
func (c *Client) csrfToken() string {
	jar := c.Http.GetClient().Jar
	if jar == nil {
		return ""
	}
	for _, cookie := range jar.Cookies(c.BaseUrl) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// getJSON fetches a structured listing endpoint and decodes it into out.
func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, out any) error {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return &ConnectionError{Message: "get request failed", Err: err}
	}
	if res.IsError() {
		return &ConnectionError{Message: "unexpected response for a get request: " + res.Status()}
	}
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return &ParseError{Message: "invalid json response for a get request", Err: err}
	}
	return nil
}
