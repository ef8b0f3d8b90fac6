// Package youtube_test 提供托管方客户端的黑盒测试，走本地 HTTP 假后端。
package youtube_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bionicotaku/wedding-media-service/internal/conf"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/youtube"

	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

type capturedRequest struct {
	path  string
	query map[string]string
	body  string
}

// fakeBackend 记录最近一次上传请求并返回固定响应。
type fakeBackend struct {
	mu       sync.Mutex
	last     *capturedRequest
	response string
	status   int
}

func (b *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.last = &capturedRequest{
			path: r.URL.Path,
			query: map[string]string{
				"uploadType":        r.URL.Query().Get("uploadType"),
				"notifySubscribers": r.URL.Query().Get("notifySubscribers"),
			},
			body: string(body),
		}
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if b.status != 0 {
			w.WriteHeader(b.status)
		}
		_, _ = w.Write([]byte(b.response))
	})
}

func (b *fakeBackend) captured(t *testing.T) *capturedRequest {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		t.Fatal("backend received no request")
	}
	return b.last
}

func newClient(t *testing.T, backend *fakeBackend) *youtube.Client {
	t.Helper()
	ctx := context.Background()

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	svc, err := youtubeapi.NewService(ctx,
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("init api service: %v", err)
	}

	client, err := youtube.NewClient(ctx, &conf.YouTube{CategoryID: "22"},
		log.NewStdLogger(io.Discard), youtube.WithService(svc))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestClientSubmitUnlistedVideo(t *testing.T) {
	backend := &fakeBackend{response: `{"id":"yt-unit-1","kind":"youtube#video"}`}
	client := newClient(t, backend)

	id, err := client.Submit(context.Background(), "First dance", "Guest clip",
		[]string{"wedding"}, strings.NewReader("clip-bytes"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "yt-unit-1" {
		t.Fatalf("unexpected video id %q", id)
	}

	req := backend.captured(t)
	if !strings.Contains(req.path, "videos") {
		t.Errorf("unexpected upload path %q", req.path)
	}
	if req.query["notifySubscribers"] != "false" {
		t.Errorf("subscribers must not be notified, query=%v", req.query)
	}
	if !strings.Contains(req.body, `"privacyStatus":"unlisted"`) {
		t.Errorf("submitted metadata missing unlisted visibility: %s", req.body)
	}
	if !strings.Contains(req.body, `"selfDeclaredMadeForKids":false`) {
		t.Errorf("made-for-kids declaration missing: %s", req.body)
	}
	if !strings.Contains(req.body, "clip-bytes") {
		t.Errorf("media payload missing from upload body")
	}
}

func TestClientSubmitRejectsEmptyID(t *testing.T) {
	backend := &fakeBackend{response: `{}`}
	client := newClient(t, backend)

	if _, err := client.Submit(context.Background(), "t", "", nil, strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty video id")
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := youtube.NewClient(context.Background(), &conf.YouTube{}, log.NewStdLogger(io.Discard))
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "client_id") {
		t.Errorf("error should name the missing field: %v", err)
	}
}
