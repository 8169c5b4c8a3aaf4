package corebank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// AuthStore implementation — credentials and refresh tokens
// ============================================================

func (c *Client) GetCredentialsByUsername(ctx context.Context, username string) (*domain.AuthCredential, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetCredentialsByUsername")
	defer span.End()

	path := fmt.Sprintf("auth_credentials?username=eq.%s&limit=1", username)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil // not found is not an error for auth lookup
	}

	var rows []domain.AuthCredential
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_credentials: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) StoreRefreshToken(ctx context.Context, subjectID, role, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "CoreBank.StoreRefreshToken")
	defer span.End()

	_, err := c.doPost(ctx, "auth_refresh_tokens", map[string]any{
		"id":         uuid.New().String(),
		"subject_id": subjectID,
		"role":       role,
		"token_hash": tokenHash,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"revoked":    false,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
	return err
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "CoreBank.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s&revoked=eq.false&limit=1", tokenHash)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.AuthRefreshToken
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_refresh_tokens: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "CoreBank.RevokeRefreshToken")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s", tokenHash), map[string]any{
		"revoked": true,
	})
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, subjectID string) error {
	ctx, span := tracer.Start(ctx, "CoreBank.RevokeAllRefreshTokens")
	defer span.End()

	return c.doPatch(ctx, fmt.Sprintf("auth_refresh_tokens?subject_id=eq.%s", subjectID), map[string]any{
		"revoked": true,
	})
}
