package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/pkg/authenticator"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/testutil"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func requestContext(r *http.Request) context.Context {
	ctx := xcontext.WithConfigs(context.Background(), testutil.MockConfigs())
	return xcontext.WithHTTPRequest(ctx, r)
}

func TestAuthVerifier(t *testing.T) {
	engine := authenticator.NewTokenEngine[model.AccessToken]("secret", time.Minute)
	token, err := engine.Generate("user1", model.AccessToken{ID: "user1"})
	require.NoError(t, err)

	middleware := NewAuthVerifier().WithAccessToken(engine).Middleware()

	tests := []struct {
		name    string
		setup   func(r *http.Request)
		want    string
		wantErr bool
	}{
		{
			name:  "bearer",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			want:  "user1",
		},
		{
			name: "cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: testutil.MockConfigs().Auth.AccessToken.Name, Value: token})
			},
			want: "user1",
		},
		{
			name:    "missing",
			setup:   func(r *http.Request) {},
			wantErr: true,
		},
		{
			name:    "basic auth",
			setup:   func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) },
			wantErr: true,
		},
		{
			name:    "invalid token",
			setup:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/grant", nil)
			tt.setup(r)

			ctx, err := middleware(requestContext(r))
			if tt.wantErr {
				require.True(t, errorx.Is(err, errorx.Unauthenticated))
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, xcontext.RequestUserID(ctx))
		})
	}
}

type mockLimiter struct {
	allowed int
	err     error
	keys    []string
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	m.keys = append(m.keys, key)
	if m.err != nil {
		return nil, m.err
	}

	return &redis_rate.Result{Limit: limit, Allowed: m.allowed, RetryAfter: time.Second}, nil
}

func TestGrantRateLimiter(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/grant", nil)
	ctx := xcontext.WithRequestUserID(requestContext(r), "user1")

	limiter := &mockLimiter{allowed: 1}
	_, err := NewGrantRateLimiter(limiter).Middleware()(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"rate:grant:user1"}, limiter.keys)

	limiter.allowed = 0
	_, err = NewGrantRateLimiter(limiter).Middleware()(ctx)
	require.True(t, errorx.Is(err, errorx.TooManyRequests))

	// Fails open.
	limiter.err = errors.New("redis is down")
	_, err = NewGrantRateLimiter(limiter).Middleware()(ctx)
	require.NoError(t, err)
}

func TestSetAccessTokenCookie(t *testing.T) {
	w := httptest.NewRecorder()
	ctx := requestContext(httptest.NewRequest(http.MethodPost, "/provision", nil))
	ctx = xcontext.WithHTTPWriter(ctx, w)

	SetAccessTokenCookie(ctx, "token-value")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, testutil.MockConfigs().Auth.AccessToken.Name, cookies[0].Name)
	require.Equal(t, "token-value", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
}
