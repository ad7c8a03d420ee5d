package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"companion-cli/internal/config"
	"companion-cli/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// Supabase inserts items through the PostgREST endpoint of a Supabase project.
type Supabase struct {
	endpoint string
	key      string
	client   *http.Client
}

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, msg)
}

var ErrKeyExpired = errors.New("supabase key has expired")

type supabaseRow struct {
	Content  string         `json:"content"`
	Status   string         `json:"status"`
	Type     string         `json:"type"`
	UserID   string         `json:"user_id"`
	Metadata model.Metadata `json:"metadata"`
}

func NewSupabase(cfg config.SupabaseConfig, client *http.Client) (*Supabase, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("supabase sink: missing url")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("supabase sink: invalid url: %w", err)
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("supabase sink: missing key")
	}
	if err := checkKey(key, time.Now()); err != nil {
		return nil, err
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = "items"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Supabase{
		endpoint: base + "/rest/v1/" + url.PathEscape(table),
		key:      key,
		client:   client,
	}, nil
}

// checkKey rejects legacy JWT keys (anon/service_role) whose exp has passed.
// Opaque keys are not inspected.
func checkKey(key string, now time.Time) error {
	if strings.Count(key, ".") != 2 {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return fmt.Errorf("supabase sink: malformed key: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("supabase sink: malformed key: %w", err)
	}
	if exp != nil && now.After(exp.Time) {
		return fmt.Errorf("%w (exp %s)", ErrKeyExpired, exp.Time.UTC().Format(time.RFC3339))
	}
	return nil
}

func (s *Supabase) Submit(ctx context.Context, it model.Item) error {
	body, err := json.Marshal([]supabaseRow{{
		Content:  it.Content,
		Status:   string(it.Status),
		Type:     string(it.Kind),
		UserID:   it.OwnerID,
		Metadata: it.Metadata,
	}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func (s *Supabase) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
