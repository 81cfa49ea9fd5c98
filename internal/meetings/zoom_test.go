package meetings

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

func TestCreateMeeting(t *testing.T) {
	var got createMeetingRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/me/meetings" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":123,"join_url":"https://zoom.us/j/123"}`)
	}))
	defer srv.Close()

	client := NewZoomClient(Config{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"}, srv.Client())
	start := time.Date(2030, 7, 1, 15, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	link, err := client.CreateMeeting(context.Background(), "GopherCon", start)
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
	if link != "https://zoom.us/j/123" {
		t.Errorf("link = %q", link)
	}
	if got.Topic != "GopherCon" || got.Type != 2 || got.Duration != 60 || got.Timezone != "UTC" {
		t.Errorf("request body = %+v", got)
	}
	if got.StartTime != "2030-07-01T08:00:00Z" {
		t.Errorf("start_time = %q", got.StartTime)
	}

	token := strings.TrimPrefix(auth, "Bearer ")
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("bearer token invalid: %v", err)
	}
	if claims.Issuer != "key" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestCreateMeetingAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":124,"message":"Invalid access token."}`)
	}))
	defer srv.Close()

	client := NewZoomClient(Config{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"}, srv.Client())
	_, err := client.CreateMeeting(context.Background(), "GopherCon", time.Now())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != 124 || apiErr.Error() != "Invalid access token." {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestCreateMeetingRequiresCredentials(t *testing.T) {
	client := NewZoomClient(Config{}, nil)
	if _, err := client.CreateMeeting(context.Background(), "GopherCon", time.Now()); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestCreateMeetingMissingJoinURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":1}`)
	}))
	defer srv.Close()

	client := NewZoomClient(Config{BaseURL: srv.URL, APIKey: "key", APISecret: "secret"}, srv.Client())
	if _, err := client.CreateMeeting(context.Background(), "GopherCon", time.Now()); err == nil {
		t.Fatal("expected error for a response without join_url")
	}
}
