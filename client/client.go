// Package client is the Go SDK for the CollegeEase API. It mirrors the
// browser client this service grew out of: a session context shared by every
// view, a student view over the caller's own documents and a staff view over
// the roster. Views discard stale in-flight responses instead of applying
// them out of order.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"collegease.app/server/pkg/roster"
)

// File is one uploaded document as the API reports it.
type File = roster.File

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type Profile struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	RollNumber string    `json:"roll_number,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Batch      string    `json:"batch,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type SignUpInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	RollNumber string `json:"roll_number,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Batch      string `json:"batch,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type authPayload struct {
	AccessToken    string   `json:"access_token"`
	SessionID      string   `json:"session_id"`
	User           *User    `json:"user"`
	Profile        *Profile `json:"profile"`
	ProfilePending bool     `json:"profile_pending"`
}

type sessionPayload struct {
	User           *User    `json:"user"`
	Profile        *Profile `json:"profile"`
	ProfilePending bool     `json:"profile_pending"`
}

type registerPayload struct {
	UserID         string `json:"user_id"`
	ProfilePending bool   `json:"profile_pending"`
	Error          string `json:"error"`
}

func (c *Client) signIn(ctx context.Context, email, password string) (*authPayload, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	var out authPayload
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) signUp(ctx context.Context, input SignUpInput) (*registerPayload, error) {
	body, _ := json.Marshal(input)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/register", bytes.NewReader(body))
	if err != nil {
		return nil, &QueryError{Msg: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &QueryError{Msg: err.Error()}
	}
	defer resp.Body.Close()

	var out registerPayload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &QueryError{Msg: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusCreated:
		return &out, nil
	case out.ProfilePending:
		// Identity exists without a profile; not a total failure.
		return &out, &ProfileError{Msg: out.Error, UserID: out.UserID}
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &ValidationError{Msg: out.Error}
	default:
		return nil, &AuthError{Msg: out.Error}
	}
}

func (c *Client) signOut(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) session(ctx context.Context, token string) (*sessionPayload, error) {
	var out sessionPayload
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/session", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) completeProfile(ctx context.Context, token string, input SignUpInput) (*Profile, error) {
	body, _ := json.Marshal(input)

	var out Profile
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/profile", token, bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) listOwnFiles(ctx context.Context, token string) ([]File, error) {
	var out struct {
		Data []File `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/student/files", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) uploadFile(ctx context.Context, token, name, mimeType string, r io.Reader) (*File, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	if mimeType != "" {
		header.Set("Content-Type", mimeType)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, &UploadError{Msg: err.Error()}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &UploadError{Msg: err.Error()}
	}
	if err := w.Close(); err != nil {
		return nil, &UploadError{Msg: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/student/files", &buf)
	if err != nil {
		return nil, &UploadError{Msg: err.Error()}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UploadError{Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, &UploadError{Msg: decodeAPIError(resp.Body, resp.StatusCode)}
	}

	var out File
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &UploadError{Msg: err.Error()}
	}
	return &out, nil
}

func (c *Client) deleteFile(ctx context.Context, token, fileID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/student/files/"+fileID, token, nil, nil)
}

func (c *Client) listStudents(ctx context.Context, token string) ([]roster.Student, error) {
	var out struct {
		Data []roster.Student `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/staff/students", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// doJSON issues a request and decodes the JSON response into out, mapping
// non-2xx replies onto the error taxonomy by status code.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &QueryError{Msg: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &QueryError{Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := decodeAPIError(resp.Body, resp.StatusCode)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Msg: msg}
		case http.StatusConflict:
			return &ProfileError{Msg: msg}
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &ValidationError{Msg: msg}
		default:
			return &QueryError{Msg: msg}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &QueryError{Msg: err.Error()}
	}
	return nil
}

func decodeAPIError(r io.Reader, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("request failed with status %d", status)
}
