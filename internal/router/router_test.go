package router_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gnap-as/internal/config"
	"gnap-as/internal/router"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

// noRedirect deja ver los 303 del consentimiento.
var noRedirect = &http.Client{
	CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	app, err := router.NewRouter(router.Options{Config: config.Default()})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	ts := httptest.NewServer(app.Handler)
	t.Cleanup(ts.Close)
	return ts
}

type grantResponse struct {
	InstanceID string `json:"instance_id"`
	Continue   struct {
		URI         string `json:"uri"`
		AccessToken string `json:"access_token"`
		Wait        int    `json:"wait"`
	} `json:"continue"`
	Interact struct {
		Redirect string `json:"redirect"`
		Finish   struct {
			URI    string `json:"uri"`
			Method string `json:"method"`
		} `json:"finish"`
	} `json:"interact"`
	AccessToken []struct {
		Value     string `json:"value"`
		Label     string `json:"label"`
		ExpiresIn int64  `json:"expires_in"`
	} `json:"access_token"`
}

func TestHTTP_EndToEnd_RedirectGrant(t *testing.T) {
	ts := newServer(t)

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	jwkJSON, err := jose.JSONWebKey{Key: key.Public(), KeyID: "kid-1", Algorithm: "ES256"}.MarshalJSON()
	if err != nil {
		t.Fatalf("jwk: %v", err)
	}

	// 1) Cliente se registra con su JWK
	{
		st, body := doReq(t, ts.URL, "POST", "/clients", nil, map[string]any{
			"instance_id": "photo-app",
			"key":         map[string]any{"kid": "kid-1", "jwk": json.RawMessage(jwkJSON)},
			"display":     map[string]any{"name": "Photo App", "uri": "https://photo.example"},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 registering client, got %d body=%s", st, string(body))
		}
	}

	// 2) Grant request firmado
	var grant grantResponse
	{
		st, body := doReq(t, ts.URL, "POST", "/grant", map[string]string{
			"Client-Assertion": assertion(t, key, "kid-1"),
		}, map[string]any{
			"client": map[string]any{"key": map[string]any{"kid": "kid-1"}},
			"access": []map[string]any{
				{"type": "photo-api", "actions": []string{"read", "write"}, "resource_server": "photos"},
				{"type": "contacts", "actions": []string{"read"}},
			},
			"interact": map[string]any{
				"redirect": map[string]any{"uri": "https://client.example/cb", "nonce": "n-1"},
			},
			"state": map[string]any{"step": 1},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 grant, got %d body=%s", st, string(body))
		}
		_ = json.Unmarshal(body, &grant)
		if grant.InstanceID == "" || grant.Continue.AccessToken == "" || grant.Interact.Redirect == "" {
			t.Fatalf("incomplete grant response: %s", string(body))
		}
		if grant.Continue.URI != "/grant/"+grant.InstanceID || grant.Continue.Wait != 5 {
			t.Fatalf("unexpected continue block: %s", string(body))
		}
	}
	cont := map[string]string{"Authorization": "GNAP " + grant.Continue.AccessToken}

	// 3) Todavía pendiente: sin access tokens
	{
		st, body := doReq(t, ts.URL, "GET", "/grant/"+grant.InstanceID, cont, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 continuation, got %d body=%s", st, string(body))
		}
		var resp grantResponse
		_ = json.Unmarshal(body, &resp)
		if len(resp.AccessToken) != 0 {
			t.Fatalf("pending grant returned tokens: %s", string(body))
		}
	}

	// 4) Página de consentimiento
	var interactionID string
	{
		st, body := doReq(t, ts.URL, "GET", "/interact/redirect/"+grant.InstanceID, nil, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 consent page, got %d body=%s", st, string(body))
		}
		var page struct {
			ClientName   string `json:"client_name"`
			Interactions []struct {
				ID   string `json:"id"`
				Type string `json:"type"`
			} `json:"interactions"`
		}
		_ = json.Unmarshal(body, &page)
		if page.ClientName != "Photo App" || len(page.Interactions) != 1 || page.Interactions[0].Type != "REDIRECT" {
			t.Fatalf("unexpected consent page: %s", string(body))
		}
		interactionID = page.Interactions[0].ID
	}

	// 5) Consentimiento con nonce equivocado
	{
		st, _ := postForm(t, ts.URL, "/interact/consent/"+grant.InstanceID, url.Values{
			"approved":       {"true"},
			"interaction_id": {interactionID},
			"nonce":          {"wrong"},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 with wrong nonce, got %d", st)
		}
	}

	// 6) Usuario aprueba => 303 al cliente con hash e interact_ref
	{
		res := postFormRaw(t, ts.URL, "/interact/consent/"+grant.InstanceID, url.Values{
			"approved":       {"true"},
			"interaction_id": {interactionID},
			"nonce":          {"n-1"},
			"user_id":        {"alice"},
		})
		if res.StatusCode != http.StatusSeeOther {
			t.Fatalf("expected 303 after consent, got %d", res.StatusCode)
		}
		loc, err := url.Parse(res.Header.Get("Location"))
		if err != nil {
			t.Fatalf("location: %v", err)
		}
		if loc.Host != "client.example" || loc.Query().Get("hash") == "" || loc.Query().Get("interact_ref") != interactionID {
			t.Fatalf("unexpected redirect %s", loc.String())
		}
	}

	// 7) Continuación devuelve un token por resource server, y los mismos al repetir
	var tokenValue string
	{
		st, body := doReq(t, ts.URL, "POST", "/grant/"+grant.InstanceID, cont, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 continuation, got %d body=%s", st, string(body))
		}
		var resp grantResponse
		_ = json.Unmarshal(body, &resp)
		if len(resp.AccessToken) != 2 {
			t.Fatalf("expected 2 access tokens, got %s", string(body))
		}
		tokenValue = resp.AccessToken[0].Value

		_, again := doReq(t, ts.URL, "GET", "/grant/"+grant.InstanceID, cont, nil)
		if !strings.Contains(string(again), tokenValue) {
			t.Fatalf("second continuation minted new tokens: %s", string(again))
		}
	}

	// 8) Introspección
	{
		st, body := postForm(t, ts.URL, "/token/introspect", url.Values{"token": {tokenValue}})
		if st != http.StatusOK {
			t.Fatalf("expected 200 introspect, got %d", st)
		}
		var info struct {
			Active  bool   `json:"active"`
			GrantID string `json:"grant_id"`
			Sub     string `json:"sub"`
		}
		_ = json.Unmarshal(body, &info)
		if !info.Active || info.GrantID != grant.InstanceID || info.Sub != "alice" {
			t.Fatalf("unexpected introspection: %s", string(body))
		}
	}

	// 9) Revocación: la segunda vez no hay nada que revocar
	{
		if st, _ := postForm(t, ts.URL, "/token/revoke", url.Values{"token": {tokenValue}}); st != http.StatusOK {
			t.Fatalf("expected 200 revoke, got %d", st)
		}
		if st, _ := postForm(t, ts.URL, "/token/revoke", url.Values{"token": {tokenValue}}); st != http.StatusNotFound {
			t.Fatalf("expected 404 second revoke, got %d", st)
		}
		_, body := postForm(t, ts.URL, "/token/introspect", url.Values{"token": {tokenValue}})
		if !strings.Contains(string(body), `"active":false`) {
			t.Fatalf("revoked token still active: %s", string(body))
		}
	}

	// 10) Cambio de estado protegido por el continuation token
	{
		st, _ := doReq(t, ts.URL, "PUT", "/grant/"+grant.InstanceID+"/status?status=revoked", nil, nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token, got %d", st)
		}

		st, body := doReq(t, ts.URL, "PUT", "/grant/"+grant.InstanceID+"/status?status=revoked", cont, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"status":"REVOKED"`) {
			t.Fatalf("expected 200 REVOKED, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_ContinuationRejectsForeignToken(t *testing.T) {
	ts := newServer(t)

	a := createAnonymousGrant(t, ts.URL)
	b := createAnonymousGrant(t, ts.URL)

	tests := []struct {
		name   string
		header map[string]string
	}{
		{"no header", nil},
		{"other grant token", map[string]string{"Authorization": "GNAP " + a.Continue.AccessToken}},
		{"garbage", map[string]string{"Authorization": "GNAP nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, "GET", "/grant/"+b.InstanceID, tt.header, nil)
			if st != http.StatusUnauthorized || strings.TrimSpace(string(body)) != `{"error":"request_denied"}` {
				t.Fatalf("expected 401 request_denied, got %d body=%s", st, string(body))
			}
		})
	}
}

func TestHTTP_GrantRejectsBadAssertion(t *testing.T) {
	ts := newServer(t)

	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	other, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	jwkJSON, _ := jose.JSONWebKey{Key: key.Public(), KeyID: "kid-2"}.MarshalJSON()

	st, body := doReq(t, ts.URL, "POST", "/clients", nil, map[string]any{
		"key": map[string]any{"kid": "kid-2", "jwk": json.RawMessage(jwkJSON)},
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 registering client, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "POST", "/grant", map[string]string{
		"Client-Assertion": assertion(t, other, "kid-2"),
	}, map[string]any{
		"client": map[string]any{"key": map[string]any{"kid": "kid-2"}},
		"access": []map[string]any{{"type": "photo-api"}},
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with forged assertion, got %d body=%s", st, string(body))
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newServer(t)
	createAnonymousGrant(t, ts.URL)

	if st, body := doReq(t, ts.URL, "GET", "/health", nil, nil); st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health: %d %s", st, string(body))
	}

	st, body := doReq(t, ts.URL, "GET", "/metrics", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	if !strings.Contains(string(body), "grants_created_total") {
		t.Fatalf("metrics missing grants counter")
	}
}

func createAnonymousGrant(t *testing.T, baseURL string) grantResponse {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/grant", nil, map[string]any{
		"access":   []map[string]any{{"type": "photo-api", "actions": []string{"read"}}},
		"interact": map[string]any{"user_code": true},
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 grant, got %d body=%s", st, string(body))
	}
	var resp grantResponse
	_ = json.Unmarshal(body, &resp)
	if resp.InstanceID == "" {
		t.Fatalf("grant: missing instance_id body=%s", string(body))
	}
	return resp
}

func assertion(t *testing.T, key *ecdsa.PrivateKey, kid string) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Subject:   "photo-app",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign assertion: %v", err)
	}
	return s
}

func postForm(t *testing.T, baseURL, path string, form url.Values) (int, []byte) {
	t.Helper()
	res := postFormRaw(t, baseURL, path, form)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	return res.StatusCode, body
}

func postFormRaw(t *testing.T, baseURL, path string, form url.Values) *http.Response {
	t.Helper()

	req, err := http.NewRequest("POST", baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := noRedirect.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func doReq(t *testing.T, baseURL, method, path string, headers map[string]string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := noRedirect.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
