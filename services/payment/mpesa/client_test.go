package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		BaseURL:        baseURL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/api/payments/mpesa/callback",
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
	}
}

func TestAccessToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/v1/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok123",
			"expires_in":   "3599",
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	token, err := c.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "tok123" {
		t.Errorf("expected tok123, got %q", token)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
	if gotAuth != wantAuth {
		t.Errorf("expected basic auth header %q, got %q", wantAuth, gotAuth)
	}
}

func TestAccessTokenRejectsEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": ""})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).AccessToken(context.Background()); err == nil {
		t.Error("expected an error for an empty token")
	}
}

func TestPasswordEncoding(t *testing.T) {
	c := newTestClient("http://unused")
	got := c.password("20240610120000")
	want := base64.StdEncoding.EncodeToString([]byte("174379passkey20240610120000"))
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSTKPush(t *testing.T) {
	var pushed stkPushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			if auth := r.Header.Get("Authorization"); auth != "Bearer tok123" {
				t.Errorf("expected bearer token, got %q", auth)
			}
			json.NewDecoder(r.Body).Decode(&pushed)
			json.NewEncoder(w).Encode(STKPushResponse{
				MerchantRequestID: "mr-1",
				CheckoutRequestID: "ws_CO_123",
				ResponseCode:      "0",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.STKPush(context.Background(), "254712345678", 6500.40, "HVN-REF", "stay deposit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.CheckoutRequestID != "ws_CO_123" {
		t.Errorf("expected checkout request id, got %q", resp.CheckoutRequestID)
	}

	if pushed.BusinessShortCode != "174379" || pushed.PartyB != "174379" {
		t.Errorf("expected the shortcode on both legs, got %+v", pushed)
	}
	if pushed.PhoneNumber != "254712345678" || pushed.PartyA != "254712345678" {
		t.Errorf("expected the payer phone on both legs, got %+v", pushed)
	}
	// Daraja takes whole shillings; fractions round up.
	if pushed.Amount != 6501 {
		t.Errorf("expected amount 6501, got %d", pushed.Amount)
	}
	if pushed.TransactionType != "CustomerPayBillOnline" {
		t.Errorf("unexpected transaction type %q", pushed.TransactionType)
	}
	if pushed.CallBackURL != c.CallbackURL {
		t.Errorf("expected callback url %q, got %q", c.CallbackURL, pushed.CallBackURL)
	}

	wantPassword := base64.StdEncoding.EncodeToString([]byte(c.Shortcode + c.Passkey + pushed.Timestamp))
	if pushed.Password != wantPassword {
		t.Errorf("password does not match shortcode+passkey+timestamp encoding")
	}
}

func TestSTKPushRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123", "expires_in": "3599"})
		default:
			json.NewEncoder(w).Encode(STKPushResponse{
				ResponseCode:        "1",
				ResponseDescription: "insufficient balance on the business account",
			})
		}
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).STKPush(context.Background(), "254712345678", 100, "HVN-REF", "stay deposit"); err == nil {
		t.Error("expected an error for a rejected push")
	}
}

func TestQueryStatus(t *testing.T) {
	responses := []STKQueryResponse{
		{}, // still processing: no result code yet
		{ResultCode: "0", ResultDesc: "The service request is processed successfully."},
	}
	var call int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123", "expires_in": "3599"})
		case "/mpesa/stkpushquery/v1/query":
			var req stkQueryRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.CheckoutRequestID != "ws_CO_123" {
				t.Errorf("expected checkout request id in the query, got %+v", req)
			}
			json.NewEncoder(w).Encode(responses[call])
			call++
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	resp, err := c.QueryStatus(context.Background(), "ws_CO_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Resolved() {
		t.Error("expected an unresolved response while processing")
	}

	resp, err = c.QueryStatus(context.Background(), "ws_CO_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Resolved() || !resp.Success() {
		t.Errorf("expected a resolved success, got %+v", resp)
	}
}

func TestQueryStatusPayerDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123", "expires_in": "3599"})
		default:
			json.NewEncoder(w).Encode(STKQueryResponse{ResultCode: "1032", ResultDesc: "Request cancelled by user"})
		}
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).QueryStatus(context.Background(), "ws_CO_123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Resolved() || resp.Success() {
		t.Errorf("expected a resolved decline, got %+v", resp)
	}
}

func TestCallbackPayloadDecoding(t *testing.T) {
	raw := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`

	var payload CallbackPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	cb := payload.Body.StkCallback
	if cb.CheckoutRequestID != "ws_CO_191220191020363925" {
		t.Errorf("unexpected checkout request id %q", cb.CheckoutRequestID)
	}
	if cb.ResultCode != 1032 {
		t.Errorf("unexpected result code %d", cb.ResultCode)
	}
}
