// Smoke check against a running tindo-api: mints an owner token,
// provisions a staff account, grants one permission and verifies both
// the allow and the deny side through the public HTTP surface.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

func main() {
	base := os.Getenv("TINDO_API_ADDR")
	if base == "" {
		base = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 5 * time.Second}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	ownerID := fmt.Sprintf("smoke-owner-%d", rnd.Int())
	email := fmt.Sprintf("smoke-%d@example.com", rnd.Int())
	password := fmt.Sprintf("pw-%d", rnd.Int())

	// Owner token.
	var tokenResp struct {
		Token string `json:"token"`
	}
	mustCall(client, http.MethodPost, base+"/v1/owner/token", "",
		map[string]any{"owner_id": ownerID}, http.StatusOK, &tokenResp)
	if tokenResp.Token == "" {
		log.Fatal("empty owner token")
	}

	// Create staff.
	var profile struct {
		ID string `json:"id"`
	}
	mustCall(client, http.MethodPost, base+"/v1/staff", tokenResp.Token,
		map[string]any{"email": email, "password": password, "name": "Smoke"},
		http.StatusCreated, &profile)
	if profile.ID == "" {
		log.Fatal("empty staff id")
	}

	// Grant sales.view only.
	mustCall(client, http.MethodPut, base+"/v1/staff/"+profile.ID+"/grants", tokenResp.Token,
		map[string]any{"permission_key": "sales.view", "is_enabled": true},
		http.StatusNoContent, nil)

	// Login.
	var login struct {
		SessionToken string `json:"session_token"`
	}
	mustCall(client, http.MethodPost, base+"/v1/staff/login", "",
		map[string]any{"email": email, "password": password},
		http.StatusOK, &login)
	if login.SessionToken == "" {
		log.Fatal("empty session token")
	}

	// Session resolves.
	mustCall(client, http.MethodGet, base+"/v1/staff/session", login.SessionToken,
		nil, http.StatusOK, nil)

	// Staff management stays denied without staff.manage.
	mustCall(client, http.MethodGet, base+"/v1/staff", login.SessionToken,
		nil, http.StatusForbidden, nil)

	// Owner still sees the roster.
	mustCall(client, http.MethodGet, base+"/v1/staff", tokenResp.Token,
		nil, http.StatusOK, nil)

	fmt.Printf("✅ auth smoke test passed: owner=%s staff=%s\n", ownerID, profile.ID)
}

func mustCall(client *http.Client, method, url, token string, body any, wantStatus int, out any) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			log.Fatalf("marshal %s %s: %v", method, url, err)
		}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("request %s %s: %v", method, url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		log.Fatalf("%s %s: status %d, want %d", method, url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
}
