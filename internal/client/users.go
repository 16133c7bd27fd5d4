package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"lostfound/internal/adapt"
	"lostfound/internal/model"
	"lostfound/internal/query"
)

// ListUsers returns all accounts, degrading to an empty listing on failure.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/users", nil, nil)
	if err != nil {
		slog.Warn("user listing failed, degrading to empty result", "error", err)
		return []model.User{}, nil
	}
	return adapt.Users(data), nil
}

// Login authenticates and returns the session record. The response may
// carry the user nested under "user" or flattened beside the token; both
// shapes adapt. The returned token is attached to subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Session, error) {
	data, err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		map[string]string{"email": email, "password": password})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, query.ErrInvalidCredentials
		}
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unexpected login response")
	}

	var user model.User
	if nested, ok := raw["user"]; ok {
		user = adapt.UserBytes(nested)
	} else {
		user = adapt.User(raw)
	}

	var token string
	for _, key := range []string{"token", "access_token"} {
		if msg, ok := raw[key]; ok {
			json.Unmarshal(msg, &token)
			if token != "" {
				break
			}
		}
	}
	if token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}

	c.SetToken(token)
	return &model.Session{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Token:  token,
	}, nil
}

// Register creates a new USER account.
func (c *Client) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	data, err := c.do(ctx, http.MethodPost, "/users", nil, map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
		"role":     model.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	user := adapt.UserBytes(data)
	return &user, nil
}

// UploadImage posts a prepared photo and returns its URL reference.
func (c *Client) UploadImage(ctx context.Context, filename string, photo []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(photo)); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/items/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &APIError{Message: "network error"}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &APIError{Message: "network error"}
	}
	if resp.StatusCode >= 400 {
		return "", &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &result); err != nil || result.URL == "" {
		return "", fmt.Errorf("upload response carried no url")
	}
	return result.URL, nil
}
