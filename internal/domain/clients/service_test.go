package clients

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gnap-as/internal/ports/auth"
	"gnap-as/internal/ports/storage"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Client
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Client{}}
}

func (r *testRepo) Create(ctx context.Context, c Client) error {
	if _, ok := r.byID[c.ID]; ok {
		return storage.ErrAlreadyExists
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Update(ctx context.Context, c Client) error {
	if _, ok := r.byID[c.ID]; !ok {
		return storage.ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return Client{}, storage.ErrNotFound
	}
	return c, nil
}

func (r *testRepo) GetByInstanceID(ctx context.Context, instanceID string) (Client, error) {
	for _, c := range r.byID {
		if c.InstanceID == instanceID {
			return c, nil
		}
	}
	return Client{}, storage.ErrNotFound
}

func (r *testRepo) GetByKeyID(ctx context.Context, keyID string) (Client, error) {
	for _, c := range r.byID {
		if c.KeyID == keyID {
			return c, nil
		}
	}
	return Client{}, storage.ErrNotFound
}

type testInfoRepo struct {
	byID map[string]Information
}

func newTestInfoRepo() *testInfoRepo {
	return &testInfoRepo{byID: map[string]Information{}}
}

func (r *testInfoRepo) Create(ctx context.Context, info Information) error {
	r.byID[info.ID] = info
	return nil
}

func (r *testInfoRepo) Update(ctx context.Context, info Information) error {
	if _, ok := r.byID[info.ID]; !ok {
		return storage.ErrNotFound
	}
	r.byID[info.ID] = info
	return nil
}

func (r *testInfoRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testInfoRepo) GetByID(ctx context.Context, id string) (Information, error) {
	info, ok := r.byID[id]
	if !ok {
		return Information{}, storage.ErrNotFound
	}
	return info, nil
}

func (r *testInfoRepo) GetByClientID(ctx context.Context, clientID string) (Information, error) {
	for _, info := range r.byID {
		if info.ClientID == clientID {
			return info, nil
		}
	}
	return Information{}, storage.ErrNotFound
}

// testVerifier acepta solo la aserción "good".
type testVerifier struct {
	calls  int
	gotJWK string
}

func (v *testVerifier) Verify(ctx context.Context, jwkJSON, assertion, keyID string) (auth.Claims, error) {
	v.calls++
	v.gotJWK = jwkJSON
	if assertion != "good" {
		return auth.Claims{}, errors.New("bad signature")
	}
	return auth.Claims{KeyID: keyID}, nil
}

type testResolver struct {
	jwk json.RawMessage
	err error
}

func (r testResolver) ResolveKey(ctx context.Context, jwksURI, keyID string) (json.RawMessage, error) {
	return r.jwk, r.err
}

func newTestService(opts ...Option) (*Service, *testRepo, *testInfoRepo, *testVerifier) {
	repo := newTestRepo()
	info := newTestInfoRepo()
	v := &testVerifier{}
	svc := NewService(repo, info, v, opts...)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, repo, info, v
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_CreatesClient(t *testing.T) {
	svc, repo, _, _ := newTestService()

	c, err := svc.Register(context.Background(), Candidate{
		InstanceID: "inst-1",
		Key:        &Key{KeyID: "kid-1", JWK: json.RawMessage(`{ "kty": "oct",  "k": "abc" }`)},
		Display:    &Display{Name: " My App "},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("expected generated id")
	}
	if c.KeyJWK != `{"kty":"oct","k":"abc"}` {
		t.Fatalf("expected compact jwk, got %q", c.KeyJWK)
	}
	if c.DisplayName != "My App" {
		t.Fatalf("unexpected display name %q", c.DisplayName)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 client stored, got %d", len(repo.byID))
	}
}

func TestService_Register_UpsertsByInstanceIDThenKeyID(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, Candidate{InstanceID: "inst-1", Key: &Key{KeyID: "kid-1"}})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// misma instancia, clave nueva
	second, err := svc.Register(ctx, Candidate{InstanceID: "inst-1", Key: &Key{KeyID: "kid-2"}})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if second.ID != first.ID || second.KeyID != "kid-2" {
		t.Fatalf("expected update in place, got %#v", second)
	}

	// sin instance id, match por key id
	third, err := svc.Register(ctx, Candidate{Key: &Key{KeyID: "kid-2"}, Display: &Display{Name: "Renamed"}})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if third.ID != first.ID || third.InstanceID != "inst-1" || third.DisplayName != "Renamed" {
		t.Fatalf("unexpected upsert result: %#v", third)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected a single client, got %d", len(repo.byID))
	}
}

func TestService_Register_ResolvesKeyByReference(t *testing.T) {
	svc, _, _, _ := newTestService(WithKeyResolver(testResolver{jwk: json.RawMessage(`{"kty":"EC","kid":"kid-9"}`)}))

	c, err := svc.Register(context.Background(), Candidate{
		Key: &Key{KeyID: "kid-9", JWKSURI: "https://client.example/jwks.json"},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if c.KeyJWK != `{"kty":"EC","kid":"kid-9"}` {
		t.Fatalf("unexpected jwk %q", c.KeyJWK)
	}
}

func TestService_Register_InvalidJWK(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Register(context.Background(), Candidate{
		Key: &Key{KeyID: "kid-1", JWK: json.RawMessage(`{not json`)},
	})
	if err == nil {
		t.Fatalf("expected serialization error")
	}
}

func TestService_Register_UpsertsInformationFromDisplay(t *testing.T) {
	svc, _, info, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Register(ctx, Candidate{
		Key:     &Key{KeyID: "kid-1"},
		Display: &Display{Name: "App", URI: "https://app.example", LogoURI: "https://app.example/logo.png"},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	_, err = svc.Register(ctx, Candidate{
		Key:     &Key{KeyID: "kid-1"},
		Display: &Display{Name: "App", URI: "https://app.example/v2"},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if len(info.byID) != 1 {
		t.Fatalf("expected 1 information row, got %d", len(info.byID))
	}
	got, err := svc.GetInformationByClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetInformationByClient error: %v", err)
	}
	if got.URI != "https://app.example/v2" || got.LogoURI != "" {
		t.Fatalf("unexpected information: %#v", got)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, _, _, v := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, Candidate{Key: &Key{KeyID: "kid-1", JWK: json.RawMessage(`{"kty":"oct"}`)}})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	cases := []struct {
		name      string
		cand      Candidate
		assertion string
		want      bool
	}{
		{name: "no key", cand: Candidate{}, want: false},
		{name: "empty kid", cand: Candidate{Key: &Key{}}, want: false},
		{name: "unknown kid", cand: Candidate{Key: &Key{KeyID: "other"}}, want: false},
		{name: "existence only", cand: Candidate{Key: &Key{KeyID: "kid-1"}}, want: true},
		{name: "valid assertion", cand: Candidate{Key: &Key{KeyID: "kid-1"}}, assertion: "good", want: true},
		{name: "bad assertion", cand: Candidate{Key: &Key{KeyID: "kid-1"}}, assertion: "forged", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tc.cand, tc.assertion)
			if err != nil {
				t.Fatalf("Authenticate error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if v.calls != 2 {
		t.Fatalf("expected verifier to run only when an assertion is present, calls=%d", v.calls)
	}
	if v.gotJWK != `{"kty":"oct"}` {
		t.Fatalf("verifier got unexpected jwk %q", v.gotJWK)
	}
}

func TestService_InformationCRUD(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Register(ctx, Candidate{Key: &Key{KeyID: "kid-1"}})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if _, err := svc.CreateInformation(ctx, "missing", Information{Name: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown client, got %v", err)
	}

	created, err := svc.CreateInformation(ctx, c.ID, Information{Name: "App", URI: "https://a.example"})
	if err != nil {
		t.Fatalf("CreateInformation error: %v", err)
	}

	updated, err := svc.UpdateInformation(ctx, Information{ID: created.ID, Name: "App 2"})
	if err != nil {
		t.Fatalf("UpdateInformation error: %v", err)
	}
	if updated.Name != "App 2" || updated.ClientID != c.ID {
		t.Fatalf("unexpected update: %#v", updated)
	}

	if err := svc.DeleteInformation(ctx, created.ID); err != nil {
		t.Fatalf("DeleteInformation error: %v", err)
	}
	if err := svc.DeleteInformation(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := svc.GetInformationByClient(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
