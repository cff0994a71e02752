package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	token, err := mgr.Issue(7, "operator", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "operator", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "operator", claims.Subject)
}

func TestParseExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)

	token, err := mgr.Issue(1, "stale", false)
	require.NoError(t, err)

	_, err = mgr.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.Issue(1, "operator", false)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	_, err := mgr.Parse("not.a.token")
	assert.Error(t, err)
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"empty header", "", "", true},
		{"wrong scheme", "Basic abc", "", true},
		{"prefix only", "Bearer ", "", true},
		{"prefix with spaces", "Bearer    ", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractBearer(tc.header)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNoBearerToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
