package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"companion-cli/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedKey(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "anon",
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestSupabase_Submit(t *testing.T) {
	key := signedKey(t, time.Now().Add(time.Hour))

	var (
		gotPath    string
		gotHeaders http.Header
		gotBody    []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s, err := NewSupabase(config.SupabaseConfig{URL: srv.URL + "/", Key: key, Table: "items"}, srv.Client())
	require.NoError(t, err)
	defer s.Close()

	it := testItem(t, "Call dentist\n", false)
	require.NoError(t, s.Submit(context.Background(), it))

	assert.Equal(t, "/rest/v1/items", gotPath)
	assert.Equal(t, key, gotHeaders.Get("apikey"))
	assert.Equal(t, "Bearer "+key, gotHeaders.Get("Authorization"))
	assert.Equal(t, "return=minimal", gotHeaders.Get("Prefer"))
	require.Len(t, gotBody, 1)
	row := gotBody[0]
	assert.Equal(t, "Call dentist\n", row["content"])
	assert.Equal(t, "inbox", row["status"])
	assert.Equal(t, "task", row["type"])
	assert.Equal(t, it.OwnerID, row["user_id"])
	assert.Equal(t, map[string]any{"source": "capture-app", "delegated": false}, row["metadata"])
}

func TestSupabase_ErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"42501","message":"permission denied for table items"}`)
	}))
	defer srv.Close()

	s, err := NewSupabase(config.SupabaseConfig{URL: srv.URL, Key: "sb_publishable_abc"}, srv.Client())
	require.NoError(t, err)

	err = s.Submit(context.Background(), testItem(t, "x", false))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "42501", apiErr.Code)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestSupabase_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := NewSupabase(config.SupabaseConfig{URL: srv.URL, Key: "k"}, srv.Client())
	require.NoError(t, err)
	err = s.Submit(context.Background(), testItem(t, "x", false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestNewSupabase_Validation(t *testing.T) {
	_, err := NewSupabase(config.SupabaseConfig{Key: "k"}, nil)
	assert.Error(t, err)

	_, err = NewSupabase(config.SupabaseConfig{URL: "https://x.supabase.co"}, nil)
	assert.Error(t, err)

	expired := signedKey(t, time.Now().Add(-time.Hour))
	_, err = NewSupabase(config.SupabaseConfig{URL: "https://x.supabase.co", Key: expired}, nil)
	assert.ErrorIs(t, err, ErrKeyExpired)

	s, err := NewSupabase(config.SupabaseConfig{URL: "https://x.supabase.co/", Key: "opaque"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://x.supabase.co/rest/v1/items", s.endpoint)
}
