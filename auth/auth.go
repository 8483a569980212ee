// Package auth provides cookie-based authentication driven by the sa_auth
// configuration group.
//
// Overview:
//   - Responsibility: Issue, verify and clear signed identity cookies and
//     expose the authenticated principal on the request context
//   - Key Types: Options bound from the sa_auth view, Authenticator, Principal
//   - Concurrency Model: Authenticator is immutable after construction and
//     safe for concurrent use
//   - Error Semantics: Construction fails on missing cookie_secret; an invalid
//     or absent cookie yields an anonymous request, not an error
//   - Performance Notes: Tokens are verified per request with HMAC-SHA256
//
// Usage:
//
//	view, _ := conf.View("sa_auth")
//	authn, err := auth.FromView(view)
//	handler = authn.Middleware(handler)
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shaverlee/gearbox/config"
	"github.com/shaverlee/gearbox/core/errors"
)

// Options holds the sa_auth settings. The field keys mirror the deployment
// configuration contract.
type Options struct {
	CookieSecret  string        `config:"cookie_secret" validate:"required"`
	CookieName    string        `config:"cookie_name" default:"authtkt"`
	PostLoginURL  string        `config:"post_login_url" default:"/"`
	PostLogoutURL string        `config:"post_logout_url" default:"/"`
	MaxAge        time.Duration `config:"max_age" default:"12h"`
	Secure        bool          `config:"secure"`
}

// Principal identifies an authenticated user.
type Principal struct {
	UserID      string
	DisplayName string
	Groups      []string
}

// Authenticator issues and verifies identity cookies.
type Authenticator struct {
	opts Options
}

// New creates an Authenticator. The cookie secret is required.
func New(opts Options) (*Authenticator, error) {
	if opts.CookieSecret == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "sa_auth.cookie_secret is required")
	}
	if opts.CookieName == "" {
		opts.CookieName = "authtkt"
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = 12 * time.Hour
	}
	return &Authenticator{opts: opts}, nil
}

// FromView binds Options from the sa_auth configuration view and builds the
// Authenticator.
func FromView(view config.View) (*Authenticator, error) {
	var opts Options
	if err := config.BindView(view, &opts); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, "auth.options", err)
	}
	return New(opts)
}

// Options returns the authenticator's resolved options.
func (a *Authenticator) Options() Options {
	return a.opts
}

type claims struct {
	jwt.RegisteredClaims
	DisplayName string   `json:"name,omitempty"`
	Groups      []string `json:"groups,omitempty"`
}

// IssueCookie writes a signed identity cookie for the principal.
func (a *Authenticator) IssueCookie(w http.ResponseWriter, p Principal) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.opts.MaxAge)),
		},
		DisplayName: p.DisplayName,
		Groups:      p.Groups,
	})

	signed, err := token.SignedString([]byte(a.opts.CookieSecret))
	if err != nil {
		return errors.Wrap(errors.CodeInternal, "auth.issue", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(a.opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   a.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the identity cookie.
func (a *Authenticator) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Verify parses a signed token and returns its principal.
func (a *Authenticator) Verify(tokenString string) (Principal, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(tokenString, &parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf(errors.CodeInvalidArgument, "unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.opts.CookieSecret), nil
	})
	if err != nil {
		return Principal{}, errors.Wrap(errors.CodeInvalidArgument, "auth.verify", err)
	}

	return Principal{
		UserID:      parsed.Subject,
		DisplayName: parsed.DisplayName,
		Groups:      parsed.Groups,
	}, nil
}

// Middleware attaches the authenticated principal to the request context.
// Requests without a valid cookie proceed anonymously; access control is the
// controller's concern.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(a.opts.CookieName); err == nil {
			if principal, err := a.Verify(cookie.Value); err == nil {
				r = r.WithContext(WithPrincipal(r.Context(), principal))
			}
		}
		next.ServeHTTP(w, r)
	})
}

type principalKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to the context, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
