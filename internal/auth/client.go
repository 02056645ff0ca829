// Package auth implements the Azure B2C redirect sign-in flow used by the
// MobileLink portal. The flow is forward-only: sign-in page, SETTINGS blob,
// SelfAsserted credential check, confirmation page, final form submission.
// Failing any step aborts the whole login.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pyro2927/ha-generac/internal/types"
)

// DefaultLoginBaseURL is the B2C tenant endpoint for the MobileLink sign-in policy.
const DefaultLoginBaseURL = "https://generacconnectivity.b2clogin.com/generacconnectivity.onmicrosoft.com/B2C_1A_MobileLink_SignIn"

const policyName = "B2C_1A_SignUpOrSigninOnline"

// ErrInvalidCredentials means the identity provider rejected the submitted
// username/password, or no usable credential was configured. Never retried.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ParseError reports a missing or malformed fragment of a sign-in page. It is
// a configuration/protocol failure, deliberately distinct from a credentials
// failure: proceeding with null data would be worse than failing loudly.
type ParseError struct {
	Step   string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Step, e.Detail)
}

// Flow drives the multi-step sign-in sequence. It shares its http.Client (and
// therefore its cookie jar) with the data API client so that the session
// cookies established by the final form POST authenticate later data fetches.
type Flow struct {
	apiBase    string
	loginBase  string
	headers    map[string]string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFlow creates a login flow engine. headers are the browser-style headers
// of the owning session and are sent on every step.
func NewFlow(apiBase, loginBase string, headers map[string]string, httpClient *http.Client, logger *slog.Logger) *Flow {
	return &Flow{
		apiBase:    apiBase,
		loginBase:  loginBase,
		headers:    headers,
		httpClient: httpClient,
		logger:     logger,
	}
}

// SignIn performs the full sign-in sequence and returns the CSRF token to
// attach to subsequent data requests. When the account already has a live
// server-side session the sign-in page carries the final form directly; that
// early exit completes the login without a fresh CSRF token.
func (f *Flow) SignIn(ctx context.Context, username, password string) (string, error) {
	page, err := f.signInPage(ctx, username)
	if err != nil {
		return "", err
	}

	if form, ok := extractFinalForm(page); ok {
		f.logger.Debug("Sign-in page already contains the confirmation form, skipping credential steps")
		return "", f.submitFinalForm(ctx, form)
	}

	cfg, err := f.parseSignInConfig(page)
	if err != nil {
		return "", err
	}

	if err := f.selfAsserted(ctx, username, password, cfg); err != nil {
		return "", err
	}

	confirmPage, err := f.confirm(ctx, cfg)
	if err != nil {
		return "", err
	}

	form, ok := extractFinalForm(confirmPage)
	if !ok {
		f.logger.Debug("Confirmation page without final form", "body", confirmPage)
		return "", &ParseError{Step: "confirmed page", Detail: "final submit form (action, state, code) not found"}
	}
	if err := f.submitFinalForm(ctx, form); err != nil {
		return "", err
	}

	f.logger.Info("Sign-in completed", "username", username)
	return cfg.Csrf, nil
}

// signInPage starts the flow, following the redirect chain to the rendered
// sign-in HTML.
func (f *Flow) signInPage(ctx context.Context, username string) (string, error) {
	u := f.apiBase + "/Auth/SignIn?email=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("sign-in request: %w", err)
	}
	f.applyHeaders(req)

	res, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign-in page: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("sign-in page: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign-in page returned status %d", res.StatusCode)
	}
	return string(body), nil
}

// parseSignInConfig extracts the embedded SETTINGS assignment and validates
// the fields required to continue the flow.
func (f *Flow) parseSignInConfig(page string) (*types.SignInConfig, error) {
	raw, ok := extractSettingsJSON(page)
	if !ok {
		f.logger.Debug("SETTINGS assignment missing from sign-in page", "body", page)
		return nil, &ParseError{Step: "sign-in page", Detail: "SETTINGS assignment not found"}
	}

	var cfg types.SignInConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, &ParseError{Step: "sign-in page", Detail: fmt.Sprintf("SETTINGS is not valid JSON: %v", err)}
	}
	if cfg.Csrf == "" || cfg.TransID == "" {
		return nil, &ParseError{Step: "sign-in page", Detail: "SETTINGS is missing csrf and/or transId"}
	}
	// The blob is seen both with and without the StateProperties= prefix.
	cfg.TransID = strings.TrimPrefix(cfg.TransID, "StateProperties=")
	return &cfg, nil
}

// selfAsserted submits the username/password to the identity provider. A
// non-200 HTTP status is fatal; a 200 with an embedded status other than
// "200" means the credentials were rejected.
func (f *Flow) selfAsserted(ctx context.Context, username, password string, cfg *types.SignInConfig) error {
	form := url.Values{}
	form.Set("request_type", "RESPONSE")
	form.Set("signInName", username)
	form.Set("password", password)

	u, err := url.Parse(f.loginBase + "/SelfAsserted")
	if err != nil {
		return fmt.Errorf("self-asserted url: %w", err)
	}
	q := u.Query()
	q.Set("tx", "StateProperties="+cfg.TransID)
	q.Set("p", policyName)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("self-asserted request: %w", err)
	}
	f.applyHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Csrf-Token", cfg.Csrf)

	res, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("self-asserted: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("self-asserted: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("SelfAsserted returned status %d", res.StatusCode)
	}

	var result types.SelfAssertedResult
	if err := json.Unmarshal(body, &result); err != nil {
		f.logger.Debug("Unparseable SelfAsserted body", "body", string(body))
		return &ParseError{Step: "SelfAsserted response", Detail: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if result.Status != "200" {
		f.logger.Debug("SelfAsserted rejected credentials", "status", result.Status)
		return fmt.Errorf("self-asserted status %q: %w", result.Status, ErrInvalidCredentials)
	}
	return nil
}

// confirm retrieves the confirmation page that carries the final submit form.
func (f *Flow) confirm(ctx context.Context, cfg *types.SignInConfig) (string, error) {
	u, err := url.Parse(f.loginBase + "/api/CombinedSigninAndSignup/confirmed")
	if err != nil {
		return "", fmt.Errorf("confirm url: %w", err)
	}
	q := u.Query()
	q.Set("csrf_token", cfg.Csrf)
	q.Set("tx", "StateProperties="+cfg.TransID)
	q.Set("p", policyName)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("confirm request: %w", err)
	}
	f.applyHeaders(req)
	req.Header.Set("X-Csrf-Token", cfg.Csrf)

	res, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("confirm: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("confirm: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("CombinedSigninAndSignup returned status %d", res.StatusCode)
	}
	return string(body), nil
}

// submitFinalForm POSTs the hidden state/code fields to the form's action URL.
// A 200 here completes the login: the portal answers with session cookies that
// land in the shared cookie jar.
func (f *Flow) submitFinalForm(ctx context.Context, form *finalForm) error {
	values := url.Values{}
	values.Set("state", form.State)
	values.Set("code", form.Code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, form.Action, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("final form request: %w", err)
	}
	f.applyHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("final form: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("final sign-in form returned status %d", res.StatusCode)
	}
	return nil
}

func (f *Flow) applyHeaders(req *http.Request) {
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
}
