// Package generac is a client for the Generac MobileLink cloud API. It
// authenticates in one of three modes (bearer token, captured cookies, or the
// full username/password sign-in flow) and retrieves every registered
// generator together with its detail record.
package generac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strconv"

	"github.com/pyro2927/ha-generac/internal/api"
	"github.com/pyro2927/ha-generac/internal/auth"
	"github.com/pyro2927/ha-generac/internal/types"
)

// ErrInvalidCredentials is returned when the configured credential cannot
// establish a session and no fallback exists. Callers should surface it to
// the user rather than retry.
var ErrInvalidCredentials = auth.ErrInvalidCredentials

// Client is a MobileLink API client. It tracks one logical session; callers
// must not run overlapping fetches on the same instance.
type Client struct {
	cred     Credential
	api      *api.Client
	flow     *auth.Flow
	logger   *slog.Logger
	loggedIn bool
}

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiBase    string
	loginBase  string
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient supplies the HTTP client used for every request. The client
// imposes no timeout of its own; whatever policy this client carries applies.
// A cookie jar is added if the client has none, since the sign-in flow
// depends on one.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAPIBase overrides the data API base URL.
func WithAPIBase(base string) Option {
	return func(o *options) { o.apiBase = base }
}

// WithLoginBase overrides the B2C login base URL.
func WithLoginBase(base string) Option {
	return func(o *options) { o.loginBase = base }
}

// NewClient creates a client for the given credential.
func NewClient(cred Credential, opts ...Option) (*Client, error) {
	if cred == nil {
		return nil, errors.New("credential is required")
	}

	o := &options{
		apiBase:   api.DefaultBaseURL,
		loginBase: auth.DefaultLoginBaseURL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{}
	}
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	headers := cred.headers()
	return &Client{
		cred:     cred,
		api:      api.NewClient(o.apiBase, headers, hc, o.logger),
		flow:     auth.NewFlow(o.apiBase, o.loginBase, headers, hc, o.logger),
		logger:   o.logger,
		loggedIn: cred.preAuthenticated(),
	}, nil
}

// FetchDeviceData ensures a valid session and returns every generator-type
// apparatus keyed by apparatus id. A nil map with a nil error means the list
// endpoints legitimately had no data. A session-expiry signal from the data
// layer invalidates the session and retries the whole operation exactly once;
// a second expiry is a hard failure.
func (c *Client) FetchDeviceData(ctx context.Context) (map[string]types.Item, error) {
	for attempt := 0; ; attempt++ {
		if !c.loggedIn {
			if err := c.login(ctx); err != nil {
				return nil, err
			}
			c.loggedIn = true
		}

		items, err := c.generatorData(ctx)
		if err == nil {
			return items, nil
		}
		if errors.Is(err, api.ErrSessionExpired) {
			c.loggedIn = false
			if attempt == 0 {
				c.logger.Warn("Session expired, retrying after login", "error", err)
				continue
			}
			return nil, fmt.Errorf("session expired again after relogin: %w", err)
		}
		return nil, err
	}
}

// login establishes a session according to the credential variant.
func (c *Client) login(ctx context.Context) error {
	switch cred := c.cred.(type) {
	case BearerToken:
		return nil

	case CookieJar:
		// Probe the device list to find out whether the cookies still work.
		probe, err := c.api.Fetch(ctx, api.ApparatusListPath)
		if err == nil && probe != nil {
			c.logger.Debug("Cookie session accepted by probe")
			return nil
		}
		if err != nil && !errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		if cred.Fallback == nil {
			return fmt.Errorf("cookie session rejected and no username/password fallback configured: %w", ErrInvalidCredentials)
		}
		c.logger.Info("Cookie session rejected, falling back to credential sign-in")
		return c.signIn(ctx, cred.Fallback.Username, cred.Fallback.Password)

	case UsernamePassword:
		return c.signIn(ctx, cred.Username, cred.Password)

	default:
		return fmt.Errorf("unsupported credential type %T", cred)
	}
}

func (c *Client) signIn(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required: %w", ErrInvalidCredentials)
	}
	csrf, err := c.flow.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	if csrf != "" {
		c.api.SetCSRF(csrf)
	}
	return nil
}

// generatorData walks the apparatus list sequentially, in list order, and
// aggregates detail records for generator-type units. Devices whose detail
// fetch fails are omitted; expiry signals abort the walk so the retry policy
// can act on them.
func (c *Client) generatorData(ctx context.Context) (map[string]types.Item, error) {
	apparatuses, err := c.api.ApparatusList(ctx)
	if err != nil {
		return nil, err
	}
	if apparatuses == nil {
		c.logger.Debug("No apparatus data from either list endpoint")
		return nil, nil
	}

	items := make(map[string]types.Item, len(apparatuses))
	for _, app := range apparatuses {
		if app.Type != types.ApparatusTypeGenerator {
			c.logger.Debug("Skipping apparatus of unknown type", "type", app.Type, "name", app.Name)
			continue
		}

		detail, err := c.api.ApparatusDetail(ctx, app.ApparatusID)
		if err != nil {
			if errors.Is(err, api.ErrSessionExpired) {
				return nil, err
			}
			c.logger.Warn("Skipping apparatus, detail fetch failed", "apparatus_id", app.ApparatusID, "error", err)
			continue
		}
		if detail == nil {
			c.logger.Debug("No detail from either endpoint generation", "apparatus_id", app.ApparatusID)
			continue
		}

		items[strconv.Itoa(app.ApparatusID)] = types.Item{Apparatus: app, Detail: *detail}
	}
	return items, nil
}
