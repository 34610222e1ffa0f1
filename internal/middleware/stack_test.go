package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/storyshelf/internal/auth"
	"github.com/DukeRupert/storyshelf/internal/pagination"
	"github.com/DukeRupert/storyshelf/internal/session"
	"github.com/DukeRupert/storyshelf/internal/storylist"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func TestStack_Order(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Stack(mw("a"), mw("b"), mw("c"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	want := []string{"a", "b", "c", "handler"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected a uuid request id, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Error("response should echo the request id")
	}

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != incoming {
		t.Errorf("expected incoming id %q to be kept, got %q", incoming, seen)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "<script>" {
		t.Error("malformed incoming ids must be replaced")
	}
}

func TestWithCredentials(t *testing.T) {
	var token string
	h := WithCredentials(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ = auth.ContextCredentials{}.Token(r.Context())
	}))

	req := httptest.NewRequest("POST", "/stories/delete/confirm", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: "bearer-1"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if token != "bearer-1" {
		t.Errorf("expected token from cookie, got %q", token)
	}

	token = "unset"
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/stories/delete/confirm", nil))
	if token != "" {
		t.Errorf("expected no token without cookie, got %q", token)
	}
}

func TestConsoleMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := session.NewStore(session.StoreConfig[*storylist.List]{
		Logger: logger,
		Clock:  clockwork.NewFakeClock(),
		TTL:    time.Minute,
		New: func() *storylist.List {
			return storylist.New(nil, auth.ContextCredentials{}, pagination.DefaultLimits(), logger)
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	var lists []*storylist.List
	h := NewConsoleMiddleware(store, false, logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lists = append(lists, storylist.FromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/stories", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName {
		t.Fatalf("expected a console cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("console cookie should be HttpOnly")
	}

	req := httptest.NewRequest("GET", "/stories", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("an existing session should not be re-issued")
	}

	if lists[0] == nil || lists[0] != lists[1] {
		t.Error("the same browser should get the same list")
	}

	ctx := storylist.NewContext(context.Background(), lists[0])
	if storylist.FromContext(ctx) != lists[0] {
		t.Error("context round trip failed")
	}
}

func TestError(t *testing.T) {
	plain := httptest.NewRecorder()
	Error(plain, httptest.NewRequest(http.MethodGet, "/stories", nil), "Too many requests", http.StatusTooManyRequests)

	if plain.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", plain.Code)
	}
	if got := plain.Header().Get("HX-Retarget"); got != "" {
		t.Errorf("plain requests are not retargeted, got %q", got)
	}
	if got := plain.Body.String(); got != "Too many requests\n" {
		t.Errorf("expected plain text body, got %q", got)
	}

	req := httptest.NewRequest(http.MethodPost, "/stories/delete/confirm", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	Error(rec, req, "Bad <input>", http.StatusForbidden)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Retarget"); got != "#errors" {
		t.Errorf("expected HX-Retarget #errors, got %q", got)
	}
	if got := rec.Header().Get("HX-Reswap"); got != "innerHTML" {
		t.Errorf("expected HX-Reswap innerHTML, got %q", got)
	}
	if body := rec.Body.String(); !strings.Contains(body, `role="alert"`) || !strings.Contains(body, "Bad &lt;input&gt;") {
		t.Errorf("expected escaped alert fragment, got %q", body)
	}
}
