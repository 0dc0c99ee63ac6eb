package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AuthServiceClient validates session tokens with the auth service. The
// realtime handshake is its only consumer here — HTTP routes get their
// identity from gateway headers instead.
type AuthServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// SessionIdentity is the decoded identity behind a valid session token.
type SessionIdentity struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	NetworkID    string `json:"network_id"`
	TokenVersion int    `json:"token_version"`
}

func NewAuthServiceClient(baseURL, token string) *AuthServiceClient {
	return &AuthServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ValidateSession calls /auth/validate on the auth service.
func (c *AuthServiceClient) ValidateSession(sessionToken string) (*SessionIdentity, error) {
	url := fmt.Sprintf("%s/auth/validate", c.BaseURL)

	reqBody := map[string]interface{}{
		"session_token": sessionToken,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthService /validate returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("auth validation failed: %d", resp.StatusCode)
	}

	var out SessionIdentity
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
