package tokens

import (
	"context"
	"testing"
	"time"

	"gnap-as/internal/domain/resources"
	"gnap-as/internal/ports/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	byValue map[string]AccessToken
}

func newTestRepo() *testRepo {
	return &testRepo{byValue: map[string]AccessToken{}}
}

func (r *testRepo) Create(ctx context.Context, t AccessToken) error {
	// como la base: los campos transitorios no se guardan
	t.Resources = nil
	t.Label = ""
	r.byValue[t.Value] = t
	return nil
}

func (r *testRepo) GetByValue(ctx context.Context, value string) (AccessToken, error) {
	t, ok := r.byValue[value]
	if !ok {
		return AccessToken{}, storage.ErrNotFound
	}
	return t, nil
}

func (r *testRepo) ListByGrant(ctx context.Context, grantID string) ([]AccessToken, error) {
	out := make([]AccessToken, 0)
	for _, t := range r.byValue {
		if t.GrantID == grantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *testRepo) DeleteByValue(ctx context.Context, value string) (bool, error) {
	if _, ok := r.byValue[value]; !ok {
		return false, nil
	}
	delete(r.byValue, value)
	return true, nil
}

func (r *testRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for v, t := range r.byValue {
		if !t.ExpiresAt.After(now) {
			delete(r.byValue, v)
			n++
		}
	}
	return n, nil
}

type testResources struct {
	items []resources.Resource
}

func (r testResources) ListByGrant(ctx context.Context, grantID string) ([]resources.Resource, error) {
	out := make([]resources.Resource, 0)
	for _, it := range r.items {
		if it.GrantID == grantID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r testResources) ListByGrantAndServer(ctx context.Context, grantID, server string) ([]resources.Resource, error) {
	out := make([]resources.Resource, 0)
	for _, it := range r.items {
		if it.GrantID == grantID && it.ServerKey() == server {
			out = append(out, it)
		}
	}
	return out, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestService(t *testing.T, res []resources.Resource) (*Service, *testRepo, *clock) {
	t.Helper()
	keys, err := NewStaticKey(testKey)
	if err != nil {
		t.Fatalf("NewStaticKey error: %v", err)
	}
	repo := newTestRepo()
	svc := NewService(repo, testResources{items: res}, keys, Config{Issuer: "https://as.example", Lifetime: time.Hour})
	c := &clock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = c.now
	return svc, repo, c
}

func twoServerResources() []resources.Resource {
	return []resources.Resource{
		{ID: "r1", GrantID: "g-1", Position: 0, Type: "photos", ResourceServer: "rs-a", Actions: []string{"read", "write"}},
		{ID: "r2", GrantID: "g-1", Position: 1, Type: "profile", DataTypes: []string{"email"}},
		{ID: "r3", GrantID: "g-1", Position: 2, Type: "albums", ResourceServer: "rs-a", Locations: []string{"https://rs-a.example/albums"}},
	}
}

// -------------------------
// Continuation tokens
// -------------------------

func TestService_ContinuationToken_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	tok, err := svc.GenerateContinuationToken("g-1")
	if err != nil {
		t.Fatalf("GenerateContinuationToken error: %v", err)
	}
	if !svc.ValidateContinuationToken("g-1", tok) {
		t.Fatalf("expected token to validate for its grant")
	}
	if svc.ValidateContinuationToken("g-2", tok) {
		t.Fatalf("expected token minted for g-1 to fail for g-2")
	}
}

func TestService_ContinuationToken_Invalid(t *testing.T) {
	svc, _, c := newTestService(t, twoServerResources())

	tok, err := svc.GenerateContinuationToken("g-1")
	if err != nil {
		t.Fatalf("GenerateContinuationToken error: %v", err)
	}

	// otra clave (otro proceso)
	otherKeys, _ := NewStaticKey([]byte("ffffffffffffffffffffffffffffffff"))
	other := NewService(newTestRepo(), testResources{}, otherKeys, Config{Issuer: "https://as.example", Lifetime: time.Hour})
	other.now = c.now
	if other.ValidateContinuationToken("g-1", tok) {
		t.Fatalf("expected token signed with another key to fail")
	}

	if svc.ValidateContinuationToken("g-1", "not-a-jwt") {
		t.Fatalf("expected garbage to fail")
	}

	// un access token no sirve como continuation token
	issued, err := svc.GenerateAccessTokens(context.Background(), GrantInfo{ID: "g-1"})
	if err != nil {
		t.Fatalf("GenerateAccessTokens error: %v", err)
	}
	if svc.ValidateContinuationToken("g-1", issued[0].Value) {
		t.Fatalf("expected access token to be rejected as continuation token")
	}

	// vencido
	c.t = c.t.Add(2 * time.Hour)
	if svc.ValidateContinuationToken("g-1", tok) {
		t.Fatalf("expected expired continuation token to fail")
	}
}

func TestService_ContinuationToken_ClaimsShape(t *testing.T) {
	svc, _, c := newTestService(t, nil)

	tok, err := svc.GenerateContinuationToken("g-9")
	if err != nil {
		t.Fatalf("GenerateContinuationToken error: %v", err)
	}

	var claims ContinuationClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		t.Fatalf("ParseUnverified error: %v", err)
	}
	if claims.Subject != "g-9" || claims.Issuer != "https://as.example" || claims.TokenType != "continuation" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
	if !claims.ExpiresAt.Time.Equal(c.t.Add(time.Hour)) {
		t.Fatalf("unexpected exp %v", claims.ExpiresAt.Time)
	}
}

// -------------------------
// Access tokens
// -------------------------

func TestService_GenerateAccessTokens_OnePerServer(t *testing.T) {
	svc, repo, _ := newTestService(t, twoServerResources())

	out, err := svc.GenerateAccessTokens(context.Background(), GrantInfo{ID: "g-1", ClientID: "c-1", UserID: "u-1"})
	if err != nil {
		t.Fatalf("GenerateAccessTokens error: %v", err)
	}
	if len(out) != 2 || len(repo.byValue) != 2 {
		t.Fatalf("expected 2 tokens, got %d (stored %d)", len(out), len(repo.byValue))
	}

	if out[0].Label != "rs-a" || out[1].Label != resources.DefaultServer {
		t.Fatalf("unexpected labels %q %q", out[0].Label, out[1].Label)
	}
	if len(out[0].Resources) != 2 || len(out[1].Resources) != 1 {
		t.Fatalf("unexpected partition sizes %d %d", len(out[0].Resources), len(out[1].Resources))
	}

	claims, err := svc.ParseAccessToken(out[0].Value)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	want := []AccessClaim{
		{Type: "photos", Actions: []string{"read", "write"}},
		{Type: "albums", Locations: []string{"https://rs-a.example/albums"}},
	}
	if diff := cmp.Diff(want, claims.Access); diff != "" {
		t.Fatalf("access claim mismatch (-want +got):\n%s", diff)
	}
	if claims.GrantID != "g-1" || claims.ClientID != "c-1" || claims.Subject != "u-1" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
	if claims.ID != out[0].ID {
		t.Fatalf("expected jti = token id")
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "rs-a" {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}
}

func TestService_GenerateAccessTokens_NoResources(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)

	out, err := svc.GenerateAccessTokens(context.Background(), GrantInfo{ID: "g-1"})
	if err != nil {
		t.Fatalf("GenerateAccessTokens error: %v", err)
	}
	if len(out) != 0 || len(repo.byValue) != 0 {
		t.Fatalf("expected no tokens for a grant without resources")
	}
}

func TestService_ListIssued_RebuildsTransientFields(t *testing.T) {
	svc, _, c := newTestService(t, twoServerResources())
	ctx := context.Background()

	if _, err := svc.GenerateAccessTokens(ctx, GrantInfo{ID: "g-1"}); err != nil {
		t.Fatalf("GenerateAccessTokens error: %v", err)
	}

	got, err := svc.ListIssued(ctx, "g-1")
	if err != nil {
		t.Fatalf("ListIssued error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 issued tokens, got %d", len(got))
	}
	for _, tok := range got {
		if tok.Label == "" || len(tok.Resources) == 0 {
			t.Fatalf("expected label and resources rebuilt: %#v", tok)
		}
	}

	c.t = c.t.Add(time.Hour)
	got, err = svc.ListIssued(ctx, "g-1")
	if err != nil {
		t.Fatalf("ListIssued error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected expired tokens to be skipped, got %d", len(got))
	}
}

func TestService_IntrospectToken(t *testing.T) {
	svc, _, c := newTestService(t, twoServerResources())
	ctx := context.Background()

	unknown, err := svc.IntrospectToken(ctx, "unknown-value")
	if err != nil {
		t.Fatalf("IntrospectToken error: %v", err)
	}
	if diff := cmp.Diff(Introspection{Active: false}, unknown); diff != "" {
		t.Fatalf("expected bare inactive result:\n%s", diff)
	}

	issued, err := svc.GenerateAccessTokens(ctx, GrantInfo{ID: "g-1", ClientID: "c-1"})
	if err != nil {
		t.Fatalf("GenerateAccessTokens error: %v", err)
	}

	c.t = c.t.Add(10 * time.Minute)
	res, err := svc.IntrospectToken(ctx, issued[1].Value)
	if err != nil {
		t.Fatalf("IntrospectToken error: %v", err)
	}
	if !res.Active || res.GrantID != "g-1" || res.ClientID != "c-1" {
		t.Fatalf("unexpected introspection: %#v", res)
	}
	if res.IssuedAt != issued[1].CreatedAt.Unix() || res.ExpiresIn != 50*60 {
		t.Fatalf("unexpected iat/expires_in: %d %d", res.IssuedAt, res.ExpiresIn)
	}
	if len(res.Access) != 1 || res.Access[0].Type != "profile" {
		t.Fatalf("expected only default-server resources, got %#v", res.Access)
	}

	// vencido pero sin barrer
	c.t = c.t.Add(time.Hour)
	expired, err := svc.IntrospectToken(ctx, issued[1].Value)
	if err != nil {
		t.Fatalf("IntrospectToken error: %v", err)
	}
	if diff := cmp.Diff(Introspection{Active: false}, expired); diff != "" {
		t.Fatalf("expected inactive for expired token:\n%s", diff)
	}
}

func TestService_RevokeToken_Twice(t *testing.T) {
	svc, _, _ := newTestService(t, twoServerResources())
	ctx := context.Background()

	issued, err := svc.GenerateAccessTokens(ctx, GrantInfo{ID: "g-1"})
	if err != nil {
		t.Fatalf("GenerateAccessTokens error: %v", err)
	}

	ok, err := svc.RevokeToken(ctx, issued[0].Value)
	if err != nil || !ok {
		t.Fatalf("expected first revoke to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = svc.RevokeToken(ctx, issued[0].Value)
	if err != nil || ok {
		t.Fatalf("expected second revoke to return false, ok=%v err=%v", ok, err)
	}

	res, err := svc.IntrospectToken(ctx, issued[0].Value)
	if err != nil {
		t.Fatalf("IntrospectToken error: %v", err)
	}
	if res.Active {
		t.Fatalf("expected revoked token to be inactive")
	}
}

func TestService_CleanupExpiredTokens(t *testing.T) {
	svc, repo, c := newTestService(t, twoServerResources())
	ctx := context.Background()

	if _, err := svc.GenerateAccessTokens(ctx, GrantInfo{ID: "g-1"}); err != nil {
		t.Fatalf("GenerateAccessTokens error: %v", err)
	}

	n, err := svc.CleanupExpiredTokens(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected nothing to clean yet, n=%d err=%v", n, err)
	}

	c.t = c.t.Add(time.Hour)
	n, err = svc.CleanupExpiredTokens(ctx)
	if err != nil {
		t.Fatalf("CleanupExpiredTokens error: %v", err)
	}
	if n != 2 || len(repo.byValue) != 0 {
		t.Fatalf("expected 2 deleted, got n=%d left=%d", n, len(repo.byValue))
	}
}

func TestNewStaticKey_TooShort(t *testing.T) {
	if _, err := NewStaticKey([]byte("short")); err == nil {
		t.Fatalf("expected error for short key")
	}
}

func TestNewEphemeralKey(t *testing.T) {
	a, err := NewEphemeralKey()
	if err != nil {
		t.Fatalf("NewEphemeralKey error: %v", err)
	}
	b, err := NewEphemeralKey()
	if err != nil {
		t.Fatalf("NewEphemeralKey error: %v", err)
	}
	if len(a.SigningKey()) != 32 || string(a.SigningKey()) == string(b.SigningKey()) {
		t.Fatalf("expected two distinct 32-byte keys")
	}
}
