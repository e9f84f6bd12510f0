package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/client/session"
	"github.com/avdeevsv/screenpad/internal/common"
	"github.com/avdeevsv/screenpad/internal/logging"
	"github.com/avdeevsv/screenpad/internal/telemetry"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const requestIDHeader = "X-Request-Id"

// Config holds the adapter's connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
}

// Adapter is the HTTP implementation of Store. It is identity-scoped:
// writes fail fast until an identity is bound. Telemetry sinks are injected
// at construction, never reached through a global.
type Adapter struct {
	cfg      Config
	hc       *http.Client
	log      logging.Logger
	sinks    *telemetry.Sinks
	identity *session.Identity
}

func NewAdapter(cfg Config, log logging.Logger, sinks *telemetry.Sinks) *Adapter {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Adapter{
		cfg:   cfg,
		hc:    &http.Client{Timeout: cfg.Timeout},
		log:   log,
		sinks: sinks,
	}
}

// BindIdentity scopes subsequent writes to the given identity. Passing nil
// returns the adapter to anonymous mode.
func (a *Adapter) BindIdentity(id *session.Identity) {
	a.identity = id
}

func (a *Adapter) Identity() *session.Identity {
	return a.identity
}

func (a *Adapter) requireIdentity(action string) error {
	if a.identity == nil {
		return fmt.Errorf("%s requires an identity: %w", action, common.ErrNoIdentity)
	}
	return nil
}

// call runs one logical operation: marshal, bounded retries with backoff
// and jitter, structured error reporting. The request id is generated once
// per operation, not per attempt, so the store can de-duplicate replays of
// the same intent.
func (a *Adapter) call(ctx context.Context, method, path, action, resource string, in, out any) error {
	reqID := uuid.NewString()

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", action, err)
		}
	}

	err := retry.Do(ctx, a.cfg.Retry.Backoff(), func(ctx context.Context) error {
		aerr := a.attempt(ctx, method, path, action, resource, reqID, body, out)
		if aerr == nil {
			return nil
		}
		if IsNetwork(aerr) || IsRetryable(aerr) {
			return retry.RetryableError(aerr)
		}
		return aerr
	})
	if err != nil {
		userID := ""
		if a.identity != nil {
			userID = a.identity.UserID
		}
		a.log.Error(ctx, "remote call failed",
			"action", action, "resource", resource, "request_id", reqID,
			"user_id", userID, "error", err)
		if a.sinks != nil {
			a.sinks.PublishError(ctx, action, err)
		}
		return err
	}
	return nil
}

func (a *Adapter) attempt(ctx context.Context, method, path, action, resource, reqID string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.cfg.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, reqID)
	if a.identity != nil {
		req.Header.Set("Authorization", "Bearer "+a.identity.Token)
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return &Error{Action: action, Resource: resource, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			msg = resp.Status
		}
		return &Error{
			Action: action, Resource: resource, RequestID: reqID,
			Status: resp.StatusCode, Err: errors.New(msg),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", action, err)
		}
	}
	return nil
}

func statusOf(err error) int {
	var re *Error
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

func (a *Adapter) Ping(ctx context.Context) error {
	return a.call(ctx, http.MethodGet, "/health", "ping", "health", nil, nil)
}

func (a *Adapter) SaveScreen(ctx context.Context, s *models.Screen) (*models.Screen, error) {
	if err := a.requireIdentity("save_screen"); err != nil {
		return nil, err
	}
	row := s.Clone()
	if row.UserID == "" {
		row.UserID = a.identity.UserID
	}
	var saved models.Screen
	if err := a.call(ctx, http.MethodPost, "/screens", "save_screen", "screens", row, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (a *Adapter) UpdateScreen(ctx context.Context, screenID string, update ScreenUpdate) (*models.Screen, error) {
	if err := a.requireIdentity("update_screen"); err != nil {
		return nil, err
	}
	var updated models.Screen
	path := "/screens/" + screenID
	if err := a.call(ctx, http.MethodPatch, path, "update_screen", "screens", update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *Adapter) DeleteScreens(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	var resp struct {
		IDs []string `json:"ids"`
	}
	in := map[string][]string{"ids": ids}
	if err := a.call(ctx, http.MethodPost, "/screens/delete", "delete_screens", "screens", in, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (a *Adapter) InsertScreens(ctx context.Context, rows []models.Screen) ([]models.Screen, error) {
	if len(rows) == 0 {
		return []models.Screen{}, nil
	}
	var inserted []models.Screen
	if err := a.call(ctx, http.MethodPost, "/screens/batch", "insert_screens", "screens", rows, &inserted); err != nil {
		return nil, err
	}
	return inserted, nil
}

func (a *Adapter) FetchPins(ctx context.Context) (*Pins, error) {
	var pins Pins
	if err := a.call(ctx, http.MethodGet, "/pins", "fetch_pins", "pins", nil, &pins); err != nil {
		return nil, err
	}
	return &pins, nil
}

func (a *Adapter) UpsertPins(ctx context.Context, p Pins) error {
	return a.call(ctx, http.MethodPut, "/pins", "upsert_pins", "pins", p, nil)
}

func (a *Adapter) FetchLayouts(ctx context.Context, ids []string) ([]Layout, error) {
	if len(ids) == 0 {
		return []Layout{}, nil
	}
	var layouts []Layout
	in := map[string][]string{"ids": ids}
	if err := a.call(ctx, http.MethodPost, "/layouts/query", "fetch_layouts", "layouts", in, &layouts); err != nil {
		return nil, err
	}
	return layouts, nil
}

func (a *Adapter) UpsertLayouts(ctx context.Context, rows []Layout) ([]Layout, error) {
	if len(rows) == 0 {
		return []Layout{}, nil
	}
	var saved []Layout
	if err := a.call(ctx, http.MethodPut, "/layouts", "upsert_layouts", "layouts", rows, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (a *Adapter) DeleteLayouts(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	in := map[string][]string{"ids": ids}
	return a.call(ctx, http.MethodPost, "/layouts/delete", "delete_layouts", "layouts", in, nil)
}

func (a *Adapter) PublishShareToken(ctx context.Context, screenID, token string) error {
	if err := a.requireIdentity("publish_share_token"); err != nil {
		return err
	}
	in := map[string]string{"token": token}
	return a.call(ctx, http.MethodPost, "/screens/"+screenID+"/share", "publish_share_token", "screens", in, nil)
}

// RotateShareToken replaces the screen's token; the previous one stops
// resolving.
func (a *Adapter) RotateShareToken(ctx context.Context, screenID, token string) error {
	if err := a.requireIdentity("rotate_share_token"); err != nil {
		return err
	}
	in := map[string]string{"token": token}
	return a.call(ctx, http.MethodPut, "/screens/"+screenID+"/share", "rotate_share_token", "screens", in, nil)
}

func (a *Adapter) RevokeShareToken(ctx context.Context, screenID string) error {
	if err := a.requireIdentity("revoke_share_token"); err != nil {
		return err
	}
	return a.call(ctx, http.MethodDelete, "/screens/"+screenID+"/share", "revoke_share_token", "screens", nil, nil)
}

func (a *Adapter) GetPublicScreenByToken(ctx context.Context, token string) (*models.Screen, error) {
	var s models.Screen
	err := a.call(ctx, http.MethodGet, "/public/screens/"+token, "get_public_screen", "screens", nil, &s)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

var _ Store = (*Adapter)(nil)
