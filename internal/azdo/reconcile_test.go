package azdo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-ci/argus/internal/analysis"
)

// fakePR is an in-memory thread store behind an Azure DevOps-shaped API.
type fakePR struct {
	threads    []Thread
	nextID     int
	updates    int
	creates    int
	failUpdate bool
}

func (f *fakePR) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/org/proj/_apis/git/repositories/repo/pullRequests/42/threads", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(threadList{Value: f.threads})
		case http.MethodPost:
			var t Thread
			json.NewDecoder(r.Body).Decode(&t)
			f.nextID++
			t.ID = f.nextID
			for i := range t.Comments {
				t.Comments[i].ID = i + 1
			}
			f.threads = append(f.threads, t)
			f.creates++
			json.NewEncoder(w).Encode(t)
		}
	})
	mux.HandleFunc("/org/proj/_apis/git/repositories/repo/pullRequests/42/threads/", func(w http.ResponseWriter, r *http.Request) {
		if f.failUpdate {
			http.Error(w, "update rejected", http.StatusInternalServerError)
			return
		}
		var c Comment
		json.NewDecoder(r.Body).Decode(&c)
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/org/proj/_apis/git/repositories/repo/pullRequests/42/threads/"), "/")
		for i := range f.threads {
			if len(parts) > 0 && parts[0] == strconv.Itoa(f.threads[i].ID) {
				f.threads[i].Comments[0].Content = c.Content
			}
		}
		f.updates++
		json.NewEncoder(w).Encode(c)
	})
	return mux
}

func newTestReconciler(t *testing.T, f *fakePR) (*Reconciler, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	t.Setenv("AZDO_TOKEN", "test-token")

	client, err := NewClient(srv.URL+"/org", "proj", "repo")
	require.NoError(t, err)
	client.httpCli = srv.Client()

	r := NewReconciler(client, nil)
	r.postDelay = 0
	return r, srv
}

func TestPublish_CreatesThenUpdates(t *testing.T) {
	f := &fakePR{}
	r, _ := newTestReconciler(t, f)
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, 42, analysis.KindReview, "first run body"))
	require.Len(t, f.threads, 1)
	assert.Contains(t, f.threads[0].Comments[0].Content, "🤖 AI Review")
	assert.Contains(t, f.threads[0].Comments[0].Content, "first run body")

	// Second run for the same kind updates in place.
	require.NoError(t, r.Publish(ctx, 42, analysis.KindReview, "second run body"))
	require.Len(t, f.threads, 1, "second run must not create a duplicate thread")
	assert.Equal(t, 1, f.updates)
	assert.Contains(t, f.threads[0].Comments[0].Content, "second run body")
	assert.NotContains(t, f.threads[0].Comments[0].Content, "first run body")
}

func TestPublish_DifferentKindsGetSeparateThreads(t *testing.T) {
	f := &fakePR{}
	r, _ := newTestReconciler(t, f)
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, 42, analysis.KindReview, "review body"))
	require.NoError(t, r.Publish(ctx, 42, analysis.KindSecurity, "security body"))
	assert.Len(t, f.threads, 2)
}

func TestPublish_UpdateFailureFallsBackToCreate(t *testing.T) {
	f := &fakePR{}
	r, _ := newTestReconciler(t, f)
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, 42, analysis.KindReview, "original"))
	f.failUpdate = true
	require.NoError(t, r.Publish(ctx, 42, analysis.KindReview, "replacement"))

	assert.Len(t, f.threads, 2, "failed update should fall back to a new thread")
	assert.Contains(t, f.threads[1].Comments[0].Content, "replacement")
}

func TestPublish_SkipsDeletedThreads(t *testing.T) {
	f := &fakePR{
		threads: []Thread{{
			ID:        1,
			IsDeleted: true,
			Comments:  []Comment{{ID: 1, Content: Header(analysis.KindReview)}},
		}},
		nextID: 1,
	}
	r, _ := newTestReconciler(t, f)

	require.NoError(t, r.Publish(context.Background(), 42, analysis.KindReview, "body"))
	assert.Equal(t, 0, f.updates, "deleted threads are not update targets")
	assert.Equal(t, 1, f.creates)
}

func TestPublishAll(t *testing.T) {
	f := &fakePR{}
	r, _ := newTestReconciler(t, f)

	comments := []analysis.SeparateComment{
		{Kind: analysis.KindDescribe, Result: &analysis.Result{RawResponse: "description text"}},
		{Kind: analysis.KindReview, Result: &analysis.Result{RawResponse: "review text"}},
	}
	render := func(sc analysis.SeparateComment) string { return sc.Result.RawResponse }

	require.NoError(t, r.PublishAll(context.Background(), 42, comments, render))
	assert.Len(t, f.threads, 2)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxCommentLen+500)
	got := Truncate(long)

	assert.LessOrEqual(t, len(got), maxCommentLen)
	assert.True(t, strings.HasSuffix(got, truncationNotice))

	short := "short comment"
	assert.Equal(t, short, Truncate(short))
}

func TestTruncate_DoesNotSplitRunes(t *testing.T) {
	long := strings.Repeat("⚠️", maxCommentLen)
	got := Truncate(long)
	assert.True(t, strings.HasSuffix(got, truncationNotice))
	body := strings.TrimSuffix(got, truncationNotice)
	for _, r := range body {
		if r == '�' {
			t.Fatal("truncation split a multi-byte rune")
		}
	}
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "## 🔍 🤖 AI Review", Header(analysis.KindReview))
	assert.Equal(t, "## 🔒 🤖 AI Security", Header(analysis.KindSecurity))
}
