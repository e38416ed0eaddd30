package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	session "github.com/hcas-dev/go-session"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := session.GetDefaultConfig()

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "Bearer", cfg.AuthScheme)
	assert.Equal(t, session.DefaultAccessTokenKey, cfg.AccessTokenKey)
	assert.Equal(t, session.DefaultRefreshTokenKey, cfg.RefreshTokenKey)
	assert.Equal(t, session.DefaultProfileKey, cfg.ProfileKey)
}

func TestGetDefaultConfigKeepsOverrides(t *testing.T) {
	cfg := session.GetDefaultConfig(session.Config{
		BaseURL:        "https://api.hcas.example",
		Timeout:        time.Second,
		AuthScheme:     "Token",
		AccessTokenKey: "custom_access",
	})

	assert.Equal(t, "https://api.hcas.example", cfg.BaseURL)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, "Token", cfg.AuthScheme)
	assert.Equal(t, "custom_access", cfg.AccessTokenKey)
	assert.Equal(t, session.DefaultRefreshTokenKey, cfg.RefreshTokenKey)
}
