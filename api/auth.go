package api

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"

	"github.com/oceanfreight/blockvoyage/cmn"
)

// Claims is the minimal bearer-token payload the API expects: a subject
// identifying the caller, nothing role-specific yet.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator verifies the Authorization: Bearer <token> header against
// a shared HMAC secret, mirroring the teacher's own proxy-side auth check
// ahead of handler dispatch.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator { return &Authenticator{secret: secret} }

func (a *Authenticator) verify(ctx *fasthttp.RequestCtx) (*Claims, error) {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, cmn.NewErrConfig("missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, cmn.NewErrConfig("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, cmn.Wrap(err, "api: invalid bearer token")
	}
	return claims, nil
}

// requireAuth wraps a handler so it only runs once the bearer token
// verifies, writing a 401 reply otherwise.
func (a *Authenticator) requireAuth(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if _, err := a.verify(ctx); err != nil {
			writeError(ctx, fasthttp.StatusUnauthorized, err)
			return
		}
		next(ctx)
	}
}
