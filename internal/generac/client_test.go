package generac

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyro2927/ha-generac/internal/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// portal fakes the MobileLink data API plus the B2C sign-in endpoints behind
// a single test server.
type portal struct {
	srv *httptest.Server
	mux *http.ServeMux

	listV5Calls       int
	listV2Calls       int
	detailCalls       int
	selfAssertedCalls int
	finalPosts        int

	// sessionOK gates the data endpoints; the final form POST flips it on.
	sessionOK bool

	listV5 func(w http.ResponseWriter, p *portal)
	listV2 func(w http.ResponseWriter, p *portal)
	detail func(w http.ResponseWriter, p *portal, id string)
}

const detailJSON = `{"apparatusStatus":2,"deviceType":"wifi","statusLabel":"Running","statusText":"Generator is running","properties":[{"type":71,"value":12.5},{"type":70,"value":13.1}]}`

func newPortal(t *testing.T) *portal {
	t.Helper()
	p := &portal{sessionOK: true}

	p.listV5 = func(w http.ResponseWriter, p *portal) {
		io.WriteString(w, `[{"apparatusId":1,"type":0,"name":"Home"}]`)
	}
	p.listV2 = func(w http.ResponseWriter, p *portal) {
		w.WriteHeader(http.StatusNoContent)
	}
	p.detail = func(w http.ResponseWriter, p *portal, id string) {
		io.WriteString(w, detailJSON)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v5/Apparatus/list", func(w http.ResponseWriter, r *http.Request) {
		p.listV5Calls++
		if !p.sessionOK {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		p.listV5(w, p)
	})
	mux.HandleFunc("/api/v2/Apparatus/list", func(w http.ResponseWriter, r *http.Request) {
		p.listV2Calls++
		if !p.sessionOK {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		p.listV2(w, p)
	})
	mux.HandleFunc("/api/v5/Apparatus/", func(w http.ResponseWriter, r *http.Request) {
		p.detailCalls++
		p.detail(w, p, r.URL.Path[len("/api/v5/Apparatus/"):])
	})
	mux.HandleFunc("/api/v1/Apparatus/details/", func(w http.ResponseWriter, r *http.Request) {
		p.detailCalls++
		p.detail(w, p, r.URL.Path[len("/api/v1/Apparatus/details/"):])
	})

	// B2C sign-in endpoints.
	mux.HandleFunc("/api/Auth/SignIn", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><script>var SETTINGS = {"csrf":"csrf-token","transId":"StateProperties=tx-1"};</script></html>`)
	})
	mux.HandleFunc("/login/SelfAsserted", func(w http.ResponseWriter, r *http.Request) {
		p.selfAssertedCalls++
		io.WriteString(w, `{"status":"200"}`)
	})
	mux.HandleFunc("/login/api/CombinedSigninAndSignup/confirmed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><form action="%s/postlogin"><input name="state" value="s"/><input name="code" value="c"/></form></body></html>`, p.srv.URL)
	})
	mux.HandleFunc("/postlogin", func(w http.ResponseWriter, r *http.Request) {
		p.finalPosts++
		p.sessionOK = true
	})

	p.mux = mux
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *portal) client(t *testing.T, cred Credential) *Client {
	t.Helper()
	c, err := NewClient(cred,
		WithAPIBase(p.srv.URL+"/api"),
		WithLoginBase(p.srv.URL+"/login"),
		WithHTTPClient(p.srv.Client()),
		WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	return c
}

func TestCredentialHeaders(t *testing.T) {
	token, err := NewClient(BearerToken{Token: "tok-123"})
	require.NoError(t, err)
	h := token.api.Headers()
	assert.Equal(t, "Bearer tok-123", h["Authorization"])
	assert.NotContains(t, h, "Cookie")

	cookies, err := NewClient(CookieJar{Cookies: "a=1; b=2"})
	require.NoError(t, err)
	h = cookies.api.Headers()
	assert.Equal(t, "a=1; b=2", h["Cookie"])
	assert.NotContains(t, h, "Authorization")

	userpass, err := NewClient(UsernamePassword{Username: "u", Password: "p"})
	require.NoError(t, err)
	h = userpass.api.Headers()
	assert.NotContains(t, h, "Authorization")
	assert.NotContains(t, h, "Cookie")
}

func TestFetchDeviceData_ListFallbackToV2(t *testing.T) {
	p := newPortal(t)
	p.listV5 = func(w http.ResponseWriter, p *portal) {
		w.WriteHeader(http.StatusNoContent)
	}
	p.listV2 = func(w http.ResponseWriter, p *portal) {
		io.WriteString(w, `[{"apparatusId":1,"type":0,"name":"Home"},{"apparatusId":2,"type":3,"name":"Tank"},{"apparatusId":3,"type":0,"name":"Barn"}]`)
	}

	c := p.client(t, BearerToken{Token: "tok"})
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)

	assert.Len(t, items, 2)
	assert.Contains(t, items, "1")
	assert.Contains(t, items, "3")
	// The type-3 tank monitor never triggers a detail fetch.
	assert.Equal(t, 2, p.detailCalls)
	assert.Equal(t, 1, p.listV2Calls)
}

func TestFetchDeviceData_DetailFallbackToV1(t *testing.T) {
	p := newPortal(t)
	p.detail = func(w http.ResponseWriter, p *portal, id string) {
		w.WriteHeader(http.StatusNoContent)
	}
	p.mux.HandleFunc("/api/v1/Apparatus/details/1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"apparatusStatus":1,"statusLabel":"Ready","properties":[{"type":70,"value":"42.0"}]}`)
	})

	c := p.client(t, BearerToken{Token: "tok"})
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	require.Contains(t, items, "1")

	detail := items["1"].Detail
	assert.Equal(t, "Ready", detail.StatusLabel)
	require.NotNil(t, detail.ApparatusStatus)
	assert.Equal(t, 1, *detail.ApparatusStatus)
}

func TestFetchDeviceData_RetriesOnceAfterExpiry(t *testing.T) {
	p := newPortal(t)
	expired := true
	p.listV5 = func(w http.ResponseWriter, p *portal) {
		if expired {
			expired = false
			w.WriteHeader(http.StatusForbidden)
			return
		}
		io.WriteString(w, `[{"apparatusId":1,"type":0,"name":"Home"}]`)
	}

	c := p.client(t, BearerToken{Token: "tok"})
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, p.listV5Calls)
}

func TestFetchDeviceData_DoubleExpiryIsHardFailure(t *testing.T) {
	p := newPortal(t)
	p.listV5 = func(w http.ResponseWriter, p *portal) {
		w.WriteHeader(http.StatusForbidden)
	}

	c := p.client(t, BearerToken{Token: "tok"})
	_, err := c.FetchDeviceData(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrSessionExpired)
	// One original attempt plus exactly one retry, never a third.
	assert.Equal(t, 2, p.listV5Calls)
}

func TestFetchDeviceData_TransportErrorDoesNotRetry(t *testing.T) {
	p := newPortal(t)
	p.listV5 = func(w http.ResponseWriter, p *portal) {
		io.WriteString(w, "not json at all")
	}

	c := p.client(t, BearerToken{Token: "tok"})
	_, err := c.FetchDeviceData(context.Background())

	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, p.listV5Calls)
}

func TestFetchDeviceData_NoDataFromEitherList(t *testing.T) {
	p := newPortal(t)
	p.listV5 = func(w http.ResponseWriter, p *portal) {
		w.WriteHeader(http.StatusNoContent)
	}

	c := p.client(t, BearerToken{Token: "tok"})
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestFetchDeviceData_SkipsDeviceWhenDetailMissing(t *testing.T) {
	p := newPortal(t)
	p.listV5 = func(w http.ResponseWriter, p *portal) {
		io.WriteString(w, `[{"apparatusId":1,"type":0,"name":"Home"},{"apparatusId":2,"type":0,"name":"Barn"}]`)
	}
	p.detail = func(w http.ResponseWriter, p *portal, id string) {
		if id == "2" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		io.WriteString(w, detailJSON)
	}
	p.mux.HandleFunc("/api/v1/Apparatus/details/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := p.client(t, BearerToken{Token: "tok"})
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Contains(t, items, "1")
}

func TestCookieProbe_ValidCookiesSkipLogin(t *testing.T) {
	p := newPortal(t)

	c := p.client(t, CookieJar{Cookies: "session=abc"})
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Zero(t, p.selfAssertedCalls)

	// Second fetch reuses the session without another probe.
	listCallsAfterFirst := p.listV5Calls
	_, err = c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, listCallsAfterFirst+1, p.listV5Calls)
}

func TestCookieProbe_ExpiredFallsBackToSignIn(t *testing.T) {
	p := newPortal(t)
	p.sessionOK = false // cookies no longer accepted until the flow completes

	cred := CookieJar{
		Cookies:  "session=stale",
		Fallback: &UsernamePassword{Username: "u@example.com", Password: "pw"},
	}
	c := p.client(t, cred)
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, p.selfAssertedCalls)
	assert.Equal(t, 1, p.finalPosts)
}

func TestCookieProbe_ExpiredWithoutFallbackIsInvalidCredentials(t *testing.T) {
	p := newPortal(t)
	p.sessionOK = false

	c := p.client(t, CookieJar{Cookies: "session=stale"})
	_, err := c.FetchDeviceData(context.Background())
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, p.selfAssertedCalls)
}

func TestUsernamePassword_MissingFieldsIsInvalidCredentials(t *testing.T) {
	p := newPortal(t)

	c := p.client(t, UsernamePassword{Username: "u@example.com"})
	_, err := c.FetchDeviceData(context.Background())
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUsernamePassword_SignInThenFetch(t *testing.T) {
	p := newPortal(t)
	p.sessionOK = false

	c := p.client(t, UsernamePassword{Username: "u@example.com", Password: "pw"})
	items, err := c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, p.selfAssertedCalls)

	_, err = c.FetchDeviceData(context.Background())
	require.NoError(t, err)
	// Still exactly one sign-in; the session persists across fetches.
	assert.Equal(t, 1, p.selfAssertedCalls)
}

func TestFetchDeviceData_ErrorsOnMidWalkExpiry(t *testing.T) {
	p := newPortal(t)
	p.listV5 = func(w http.ResponseWriter, p *portal) {
		io.WriteString(w, `[{"apparatusId":1,"type":0,"name":"Home"}]`)
	}
	p.detail = func(w http.ResponseWriter, p *portal, id string) {
		w.WriteHeader(http.StatusUnauthorized)
	}

	c := p.client(t, BearerToken{Token: "tok"})
	_, err := c.FetchDeviceData(context.Background())
	// Expiry mid-walk triggers the retry, which also expires: hard failure.
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrSessionExpired)
}
