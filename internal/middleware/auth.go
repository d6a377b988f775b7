package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/pkg/authenticator"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/router"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type AuthVerifier struct {
	accessTokenEngine authenticator.TokenEngine[model.AccessToken]
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken(engine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	a.accessTokenEngine = engine
	return a
}

// Middleware sets the request user id from the access token. Requests without a valid token are
// rejected before reaching the handler.
func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if a.accessTokenEngine != nil {
			if token := getAccessToken(ctx); token != "" {
				info, err := a.accessTokenEngine.Verify(token)
				if err == nil && info.ID != "" {
					return xcontext.WithRequestUserID(ctx, info.ID), nil
				}

				xcontext.Logger(ctx).Debugf("Invalid access token: %v", err)
			}
		}

		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}
}

func getAccessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	authorization := req.Header.Get("Authorization")
	auth, token, found := strings.Cut(authorization, " ")
	if found {
		if auth == "Bearer" {
			return token
		}
		return ""
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil || cookie == nil {
		return ""
	}

	return cookie.Value
}

// SetAccessTokenCookie stores token in the access token cookie of the response.
func SetAccessTokenCookie(ctx context.Context, token string) {
	cfg := xcontext.Configs(ctx).Auth.AccessToken
	http.SetCookie(xcontext.HTTPWriter(ctx), &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		MaxAge:   int(cfg.Expiration.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
