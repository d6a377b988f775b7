package authenticator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type accessToken struct {
	ID string `mapstructure:"id" json:"id"`
}

func TestJWT(t *testing.T) {
	engine := NewTokenEngine[accessToken]("secret", time.Minute)
	token, err := engine.Generate("user1", accessToken{ID: "user1"})
	require.NoError(t, err)

	obj, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user1", obj.ID)
}

func TestJWT_Expired(t *testing.T) {
	now := time.Now()
	engine := NewTokenEngine[accessToken]("secret", time.Minute).WithClock(func() time.Time { return now })
	token, err := engine.Generate("user1", accessToken{ID: "user1"})
	require.NoError(t, err)

	engine.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
	_, err = engine.Verify(token)
	require.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := NewTokenEngine[accessToken]("secret", time.Minute).Generate("user1", accessToken{ID: "user1"})
	require.NoError(t, err)

	_, err = NewTokenEngine[accessToken]("other", time.Minute).Verify(token)
	require.Error(t, err)
}
