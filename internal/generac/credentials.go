package generac

// Credential selects the authentication mode and the request headers that go
// with it. Exactly one variant is chosen at construction and is immutable for
// the client's lifetime. The interface is sealed so that adding a mode is a
// change in this package, checked by the compiler at the dispatch site.
type Credential interface {
	headers() map[string]string
	// preAuthenticated reports whether the session starts logged in.
	preAuthenticated() bool
	sealedCredential()
}

const (
	mobileUserAgent  = "mobilelink/75633 CFNetwork/3826.600.41 Darwin/24.6.0"
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// BearerToken authenticates with a pre-issued JWT. Tokens are assumed valid
// and are never probed; login is a no-op.
type BearerToken struct {
	Token string
}

func (BearerToken) sealedCredential()      {}
func (BearerToken) preAuthenticated() bool { return true }

func (t BearerToken) headers() map[string]string {
	return map[string]string{
		"Host":            "app.mobilelinkgen.com",
		"Accept":          "application/json",
		"Authorization":   "Bearer " + t.Token,
		"User-Agent":      mobileUserAgent,
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// CookieJar authenticates with a raw browser Cookie header captured from a
// logged-in portal session. When the cookies stop being accepted, login falls
// through to Fallback if one is configured.
type CookieJar struct {
	Cookies  string
	Fallback *UsernamePassword
}

func (CookieJar) sealedCredential()      {}
func (CookieJar) preAuthenticated() bool { return false }

func (c CookieJar) headers() map[string]string {
	h := browserHeaders()
	h["Cookie"] = c.Cookies
	return h
}

// UsernamePassword authenticates by driving the full B2C sign-in flow. No auth
// header is preset; the session is established by cookies acquired at login.
type UsernamePassword struct {
	Username string
	Password string
}

func (UsernamePassword) sealedCredential()      {}
func (UsernamePassword) preAuthenticated() bool { return false }

func (UsernamePassword) headers() map[string]string {
	return browserHeaders()
}

func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      browserUserAgent,
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Connection":      "keep-alive",
	}
}
