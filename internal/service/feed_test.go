package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedctl/internal/adapter/out/storage/inmemory"
	"feedctl/internal/model"
	"feedctl/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const token = "token-123"

type feedFixture struct {
	api      *service.MockPostsAPI
	session  *service.MockSessionProvider
	renderer *service.MockRenderer
	notifier *service.MockNotifier
	store    *inmemory.PostStorage
	svc      *service.FeedService
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &feedFixture{
		api:      service.NewMockPostsAPI(ctrl),
		session:  service.NewMockSessionProvider(ctrl),
		renderer: service.NewMockRenderer(ctrl),
		notifier: service.NewMockNotifier(ctrl),
		store:    inmemory.NewPostStorage(),
	}
	f.svc = service.NewFeedService(f.api, f.session, f.store, f.renderer, f.notifier)
	return f
}

func (f *feedFixture) loggedIn() {
	f.session.EXPECT().AccessToken(gomock.Any()).Return(token, nil).AnyTimes()
}

func (f *feedFixture) loggedOut() {
	f.session.EXPECT().AccessToken(gomock.Any()).Return("", nil).AnyTimes()
}

func remotePosts() []model.Post {
	return []model.Post{
		{ID: "1", Title: "first", Body: "hello world", Created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Author: model.Author{Name: "ann"}},
		{ID: "2", Title: "second", Body: "goodbye", Created: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Author: model.Author{Name: "bob"}},
	}
}

func TestFeedService_Refresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(f *feedFixture)
		wantErr    error
		wantStored int
	}{
		{
			name: "no token is a silent no-op",
			setup: func(f *feedFixture) {
				f.loggedOut()
			},
		},
		{
			name: "success replaces store and renders default view",
			setup: func(f *feedFixture) {
				f.loggedIn()
				f.api.EXPECT().ListPosts(gomock.Any(), token).Return(remotePosts(), nil)
				f.renderer.EXPECT().Render(gomock.Any(), service.FeedView{
					Posts: remotePosts(),
					Total: 2,
				})
			},
			wantStored: 2,
		},
		{
			name: "api failure is notified and keeps the old store",
			setup: func(f *feedFixture) {
				f.store.Replace([]model.Post{{ID: "old"}})
				f.loggedIn()
				f.api.EXPECT().ListPosts(gomock.Any(), token).
					Return(nil, &service.APIError{StatusCode: 500})
				f.notifier.EXPECT().NotifyFailure(gomock.Any(), service.OpRefresh, gomock.Any())
			},
			wantErr:    service.ErrRejected,
			wantStored: 1,
		},
		{
			name: "duplicate ids are rejected",
			setup: func(f *feedFixture) {
				f.loggedIn()
				f.api.EXPECT().ListPosts(gomock.Any(), token).
					Return([]model.Post{{ID: "1"}, {ID: "1"}}, nil)
				f.notifier.EXPECT().NotifyFailure(gomock.Any(), service.OpRefresh, gomock.Any())
			},
			wantErr: service.ErrInvalidResponse,
		},
		{
			name: "session read failure is notified",
			setup: func(f *feedFixture) {
				f.session.EXPECT().AccessToken(gomock.Any()).Return("", errors.New("disk on fire"))
				f.notifier.EXPECT().NotifyFailure(gomock.Any(), service.OpRefresh, gomock.Any())
			},
			wantErr: errors.New("disk on fire"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFeedFixture(t)
			tt.setup(f)

			err := f.svc.Refresh(context.Background())
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, service.IsReported(err))
				if errors.Is(tt.wantErr, service.ErrRejected) || errors.Is(tt.wantErr, service.ErrInvalidResponse) {
					require.ErrorIs(t, err, tt.wantErr)
				}
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantStored, f.store.Len())
		})
	}
}

func TestFeedService_RefreshResetsView(t *testing.T) {
	t.Parallel()

	f := newFeedFixture(t)
	f.loggedIn()
	f.api.EXPECT().ListPosts(gomock.Any(), token).Return(remotePosts(), nil).Times(2)

	var rendered []service.FeedView
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, v service.FeedView) { rendered = append(rendered, v) }).
		AnyTimes()

	ctx := context.Background()
	require.NoError(t, f.svc.Refresh(ctx))
	f.svc.Search(ctx, "hello")
	f.svc.SortBy(ctx, service.SortNewest)
	require.Equal(t, service.ViewQuery{Search: "hello", Sort: service.SortNewest}, f.svc.View().Query)

	require.NoError(t, f.svc.Refresh(ctx))

	last := rendered[len(rendered)-1]
	require.True(t, last.Query.IsDefault())
	require.Equal(t, remotePosts(), last.Posts)
}

func TestFeedService_SearchAndSortRender(t *testing.T) {
	t.Parallel()

	f := newFeedFixture(t)
	f.store.Replace(remotePosts())

	var rendered []service.FeedView
	f.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, v service.FeedView) { rendered = append(rendered, v) }).
		Times(4)

	ctx := context.Background()
	f.svc.Search(ctx, "hello")
	f.svc.SortBy(ctx, service.SortNewest)
	f.svc.Search(ctx, "")
	f.svc.ResetView(ctx)

	postIDs := func(v service.FeedView) []model.PostID {
		var out []model.PostID
		for _, p := range v.Posts {
			out = append(out, p.ID)
		}
		return out
	}

	require.Equal(t, []model.PostID{"1"}, postIDs(rendered[0]))
	require.Equal(t, []model.PostID{"1"}, postIDs(rendered[1]))
	require.Equal(t, []model.PostID{"2", "1"}, postIDs(rendered[2]))
	require.Equal(t, []model.PostID{"1", "2"}, postIDs(rendered[3]))
	for _, v := range rendered {
		require.Equal(t, 2, v.Total)
	}

	// the store order is untouched by projections
	require.Equal(t, remotePosts(), f.store.List())
}

func TestFeedService_SearchWithNoMatches(t *testing.T) {
	t.Parallel()

	f := newFeedFixture(t)
	f.store.Replace(remotePosts())
	f.renderer.EXPECT().Render(gomock.Any(), service.FeedView{
		Posts: []model.Post{},
		Query: service.ViewQuery{Search: "zebra"},
		Total: 2,
	})

	f.svc.Search(context.Background(), "zebra")
}

func TestFeedService_Create(t *testing.T) {
	t.Parallel()

	req := service.CreatePostRequest{Title: "", Body: ""}

	t.Run("submits empty fields and refreshes", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedIn()
		gomock.InOrder(
			f.api.EXPECT().CreatePost(gomock.Any(), token, req).Return(nil),
			f.api.EXPECT().ListPosts(gomock.Any(), token).Return(remotePosts(), nil),
		)
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any())

		require.NoError(t, f.svc.Create(context.Background(), req))
		require.Equal(t, 2, f.store.Len())
	})

	t.Run("failure is notified", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedIn()
		f.api.EXPECT().CreatePost(gomock.Any(), token, req).
			Return(&service.APIError{StatusCode: 400, Messages: []string{"Title is required"}})
		f.notifier.EXPECT().NotifyFailure(gomock.Any(), service.OpCreate, gomock.Any())

		err := f.svc.Create(context.Background(), req)
		require.ErrorIs(t, err, service.ErrRejected)
		require.True(t, service.IsReported(err))
	})

	t.Run("no token", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedOut()
		require.NoError(t, f.svc.Create(context.Background(), req))
	})
}

func TestFeedService_Update(t *testing.T) {
	t.Parallel()

	post := remotePosts()[0]
	req := service.UpdateFromPost(post)
	req.Body = "edited"
	req.Media = "https://example.com/cat.png"

	t.Run("full replace then refresh", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedIn()
		gomock.InOrder(
			f.api.EXPECT().UpdatePost(gomock.Any(), token, model.PostID("1"), service.UpdatePostRequest{
				Title: "first",
				Body:  "edited",
				Media: "https://example.com/cat.png",
			}).Return(nil),
			f.api.EXPECT().ListPosts(gomock.Any(), token).Return(remotePosts(), nil),
		)
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any())

		require.NoError(t, f.svc.Update(context.Background(), post, req))
	})

	t.Run("failure is notified and nothing is refreshed", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedIn()
		f.api.EXPECT().UpdatePost(gomock.Any(), token, post.ID, req).
			Return(errors.Join(service.ErrTransport, errors.New("connection reset")))
		f.notifier.EXPECT().NotifyFailure(gomock.Any(), service.OpUpdate, gomock.Any())

		err := f.svc.Update(context.Background(), post, req)
		require.ErrorIs(t, err, service.ErrTransport)
	})

	t.Run("empty id", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedIn()
		err := f.svc.Update(context.Background(), model.Post{}, req)
		require.ErrorIs(t, err, service.ErrInvalidRequest)
	})

	t.Run("no token", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedOut()
		require.NoError(t, f.svc.Update(context.Background(), post, req))
	})

	t.Run("no token with empty id is still silent", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedOut()
		require.NoError(t, f.svc.Update(context.Background(), model.Post{}, req))
	})
}

func TestFeedService_Delete(t *testing.T) {
	t.Parallel()

	post := remotePosts()[1]

	t.Run("declined makes no calls and keeps state", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.store.Replace(remotePosts())

		pending := f.svc.RequestDelete(post)
		require.Equal(t, service.DeletePrompt, pending.Prompt)
		require.Equal(t, post, pending.Post)

		require.NoError(t, f.svc.ResolveDelete(context.Background(), pending, false))
		require.Equal(t, remotePosts(), f.store.List())
	})

	t.Run("affirmed deletes and refreshes", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedIn()
		gomock.InOrder(
			f.api.EXPECT().DeletePost(gomock.Any(), token, model.PostID("2")).Return(nil),
			f.api.EXPECT().ListPosts(gomock.Any(), token).Return(remotePosts()[:1], nil),
		)
		f.renderer.EXPECT().Render(gomock.Any(), gomock.Any())

		pending := f.svc.RequestDelete(post)
		require.NoError(t, f.svc.ResolveDelete(context.Background(), pending, true))
		require.Equal(t, 1, f.store.Len())
	})

	t.Run("resolving twice is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		pending := f.svc.RequestDelete(post)
		require.NoError(t, f.svc.ResolveDelete(context.Background(), pending, false))
		require.ErrorIs(t, f.svc.ResolveDelete(context.Background(), pending, true), service.ErrInvalidRequest)
		require.ErrorIs(t, f.svc.ResolveDelete(context.Background(), nil, true), service.ErrInvalidRequest)
	})

	t.Run("failure is notified", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedIn()
		f.api.EXPECT().DeletePost(gomock.Any(), token, post.ID).Return(&service.APIError{StatusCode: 404})
		f.notifier.EXPECT().NotifyFailure(gomock.Any(), service.OpDelete, gomock.Any())

		err := f.svc.ResolveDelete(context.Background(), f.svc.RequestDelete(post), true)
		require.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("confirmer drives both steps", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		confirm := service.NewMockConfirmer(gomock.NewController(t))
		confirm.EXPECT().Confirm(gomock.Any(), service.DeletePrompt).Return(false, nil)

		require.NoError(t, f.svc.Delete(context.Background(), post, confirm))
	})

	t.Run("confirmer error aborts", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		confirm := service.NewMockConfirmer(gomock.NewController(t))
		confirm.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false, errors.New("stdin closed"))

		require.Error(t, f.svc.Delete(context.Background(), post, confirm))
	})

	t.Run("no token", func(t *testing.T) {
		t.Parallel()

		f := newFeedFixture(t)
		f.loggedOut()
		require.NoError(t, f.svc.ResolveDelete(context.Background(), f.svc.RequestDelete(post), true))
	})
}

func TestFeedService_NoTokenMeansNoRequests(t *testing.T) {
	t.Parallel()

	// The mocks fail the test on any unexpected call, so reaching the end
	// proves no request was attempted.
	f := newFeedFixture(t)
	f.loggedOut()
	ctx := context.Background()
	post := remotePosts()[0]

	require.NoError(t, f.svc.Refresh(ctx))
	require.NoError(t, f.svc.Create(ctx, service.CreatePostRequest{Title: "t", Body: "b"}))
	require.NoError(t, f.svc.Update(ctx, post, service.UpdateFromPost(post)))
	require.NoError(t, f.svc.ResolveDelete(ctx, f.svc.RequestDelete(post), true))
	require.Equal(t, 0, f.store.Len())
}

func TestFeedService_Post(t *testing.T) {
	t.Parallel()

	f := newFeedFixture(t)
	f.store.Replace(remotePosts())

	got, err := f.svc.Post("2")
	require.NoError(t, err)
	require.Equal(t, "second", got.Title)

	_, err = f.svc.Post("nope")
	require.ErrorIs(t, err, service.ErrNotFound)
}
