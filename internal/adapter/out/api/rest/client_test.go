package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedctl/internal/model"
	"feedctl/internal/service"
	"feedctl/internal/testutil/fakeapi"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, api *fakeapi.Server, apiKey string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: api.URL(), APIKey: apiKey})
	require.NoError(t, err)
	return c
}

func TestClient_ListPosts(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t)
	token := api.SeedUser("ann", "ann@stud.noroff.no", "password1")
	api.AddPost("ann", "first", "hello world")
	api.AddPost("ann", "second", "bye")

	c := newTestClient(t, api, "")
	posts, err := c.ListPosts(context.Background(), token)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	require.Equal(t, "second", posts[0].Title)
	require.Equal(t, "ann", posts[0].Author.Name)
	require.Equal(t, "ann@stud.noroff.no", posts[0].Author.Email)
	require.True(t, posts[0].Created.After(posts[1].Created))
	require.NotEmpty(t, posts[1].ID)

	h := api.LastHeader(http.MethodGet, "/social/posts")
	require.Equal(t, "Bearer "+token, h.Get("Authorization"))
	require.Equal(t, "application/json", h.Get("Accept"))
	require.Empty(t, h.Get("Content-Type"), "no body, no content type")
	_, err = uuid.Parse(h.Get("X-Request-ID"))
	require.NoError(t, err)
	require.Empty(t, h.Get("X-Noroff-API-Key"))
}

func TestClient_Mutations(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t)
	token := api.SeedUser("ann", "ann@stud.noroff.no", "password1")
	c := newTestClient(t, api, "key-1")
	ctx := context.Background()

	require.NoError(t, c.CreatePost(ctx, token, service.CreatePostRequest{Title: "t", Body: "b"}))
	h := api.LastHeader(http.MethodPost, "/social/posts")
	require.Equal(t, "application/json", h.Get("Content-Type"))
	require.Equal(t, "key-1", h.Get("X-Noroff-API-Key"))

	require.Len(t, api.Posts(), 1)

	created, err := c.ListPosts(ctx, token)
	require.NoError(t, err)
	require.Len(t, created, 1)

	err = c.UpdatePost(ctx, token, created[0].ID, service.UpdatePostRequest{Title: "t2", Body: "b2", Media: "https://img.example.com/x.png"})
	require.NoError(t, err)
	require.Equal(t, "t2", api.Posts()[0].Title)
	require.Equal(t, "https://img.example.com/x.png", api.Posts()[0].Media)

	require.NoError(t, c.DeletePost(ctx, token, created[0].ID))
	require.Empty(t, api.Posts())

	err = c.DeletePost(ctx, token, created[0].ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, err, service.ErrRejected)
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(api *fakeapi.Server)
		token   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "bad token",
			setup:   func(_ *fakeapi.Server) {},
			token:   "forged",
			wantErr: service.ErrUnauthorized,
			wantMsg: "Invalid authorization token",
		},
		{
			name: "server error",
			setup: func(api *fakeapi.Server) {
				api.Fail(http.MethodGet, "/social/posts", http.StatusInternalServerError)
			},
			wantErr: service.ErrRejected,
			wantMsg: "injected failure",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := fakeapi.New(t)
			token := api.SeedUser("ann", "ann@stud.noroff.no", "password1")
			if tt.token != "" {
				token = tt.token
			}
			tt.setup(api)

			_, err := newTestClient(t, api, "").ListPosts(context.Background(), token)
			require.ErrorIs(t, err, tt.wantErr)
			require.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	c, err := New(Options{BaseURL: "http://127.0.0.1:1/api/v1", HTTPClient: &http.Client{Timeout: time.Second}})
	require.NoError(t, err)

	_, err = c.ListPosts(context.Background(), "tok")
	require.ErrorIs(t, err, service.ErrTransport)
}

func TestClient_Auth(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t)
	c := newTestClient(t, api, "")
	ctx := context.Background()

	profile, err := c.Register(ctx, service.RegisterRequest{Name: "bob", Email: "bob@stud.noroff.no", Password: "password1"})
	require.NoError(t, err)
	require.Equal(t, model.Profile{Name: "bob", Email: "bob@stud.noroff.no"}, profile)

	_, err = c.Register(ctx, service.RegisterRequest{Name: "bob", Email: "bob@stud.noroff.no", Password: "password1"})
	require.ErrorIs(t, err, service.ErrRejected)
	require.ErrorContains(t, err, "Profile already exists")

	res, err := c.Login(ctx, service.LoginRequest{Email: "bob@stud.noroff.no", Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.Equal(t, "bob", res.Profile.Name)
	require.Empty(t, api.LastHeader(http.MethodPost, "/social/auth/login").Get("Authorization"))

	_, err = c.Login(ctx, service.LoginRequest{Email: "bob@stud.noroff.no", Password: "wrong-password"})
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestClient_LoginEnvelopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "flat", body: `{"name":"ann","email":"ann@stud.noroff.no","accessToken":"tok"}`},
		{name: "data envelope", body: `{"data":{"name":"ann","email":"ann@stud.noroff.no","accessToken":"tok"},"meta":{}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			c, err := New(Options{BaseURL: srv.URL})
			require.NoError(t, err)
			res, err := c.Login(context.Background(), service.LoginRequest{Email: "ann@stud.noroff.no", Password: "password1"})
			require.NoError(t, err)
			require.Equal(t, "tok", res.AccessToken)
			require.Equal(t, "ann", res.Profile.Name)
			require.Equal(t, "ann@stud.noroff.no", res.Profile.Email)
		})
	}
}

func TestNew_BadBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Options{BaseURL: "api.noroff.dev"})
	require.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestInstrumentTransport(t *testing.T) {
	t.Parallel()

	api := fakeapi.New(t)
	token := api.SeedUser("ann", "ann@stud.noroff.no", "password1")

	reg := prometheus.NewRegistry()
	httpClient := &http.Client{Transport: InstrumentTransport(nil, reg)}
	c, err := New(Options{BaseURL: api.URL(), HTTPClient: httpClient})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.ListPosts(ctx, token)
	require.NoError(t, err)
	_, err = c.ListPosts(ctx, "forged")
	require.Error(t, err)

	require.Equal(t, 2, testutil.CollectAndCount(reg, "feedctl_api_requests_total"))
	require.Equal(t, 1, testutil.CollectAndCount(reg, "feedctl_api_request_duration_seconds"))
}
