package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todoapi/internal/activity/model"
	"todoapi/internal/activity/repository"
	"todoapi/internal/activity/service"
	"todoapi/socket"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	svc     *service.ActivityService
	hub     *socket.Hub
	path    string
}

func newTestServer(t *testing.T, content string) *testServer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := socket.NewHub()
	go hub.Run(ctx)

	svc := service.NewActivityService(repository.NewFileRepository(path), hub)
	_, err := svc.Load()
	require.NoError(t, err)

	return &testServer{handler: Setup(svc, hub), svc: svc, hub: hub, path: path}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeStrings(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var out []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const threeActivities = `[
	{"id":1,"title":"Buy milk","description":"From the corner shop","dueDate":"monday","done":false},
	{"id":2,"title":"Walk dog","description":null,"dueDate":null,"done":true},
	{"id":3,"title":null,"description":"Call the bank about MILK money","dueDate":null,"done":false}
]`

func TestIndex(t *testing.T) {
	s := newTestServer(t, `[]`)
	for _, target := range []string{"/API", "/API/"} {
		rec := s.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "no data", rec.Body.String(), target)
	}
}

func TestAddThenAll(t *testing.T) {
	s := newTestServer(t, `[{"id":1,"title":"Buy milk"}]`)

	rec := s.do(http.MethodPost, "/API/add", `{"title":"Walk dog"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(http.MethodGet, "/API/all", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Buy milk 1", "Walk dog 2"}, decodeStrings(t, rec))

	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"title":"Buy milk","description":null,"dueDate":null,"done":false},
		{"id":2,"title":"Walk dog","description":null,"dueDate":null,"done":false}
	]`, string(data))
}

func TestAddIgnoresClientID(t *testing.T) {
	s := newTestServer(t, `[]`)

	rec := s.do(http.MethodPost, "/API/add", `{"id":77,"title":"first","done":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	a, ok := s.svc.FindByID(1)
	require.True(t, ok)
	assert.Equal(t, "first", *a.Title)
	assert.True(t, a.Done)
}

func TestAddMalformed(t *testing.T) {
	s := newTestServer(t, `[]`)
	for _, body := range []string{`{"title":`, `[1,2]`, `{"done":"maybe"}`, `null`} {
		rec := s.do(http.MethodPost, "/API/add", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Empty(t, rec.Body.String(), body)
	}
	rec := s.do(http.MethodPost, "/API/add", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.svc.All())
}

func TestDeleteRenumbers(t *testing.T) {
	s := newTestServer(t, threeActivities)

	rec := s.do(http.MethodDelete, "/API/delete/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/API/all", "")
	assert.Equal(t, []string{"Buy milk 1", " 2"}, decodeStrings(t, rec))

	rec = s.do(http.MethodGet, "/API/see/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"title":null,"description":"Call the bank about MILK money","dueDate":null,"done":false}`, rec.Body.String())
}

func TestDeleteMissingAndInvalid(t *testing.T) {
	s := newTestServer(t, threeActivities)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/API/delete/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/API/delete/two", "").Code)
	assert.Len(t, s.svc.All(), 3)
}

func TestSeeByID(t *testing.T) {
	s := newTestServer(t, threeActivities)

	rec := s.do(http.MethodGet, "/API/see/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1,"title":"Buy milk","description":"From the corner shop","dueDate":"monday","done":false}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/API/see/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/API/see/abc", "").Code)
}

func TestSeeByTitle(t *testing.T) {
	s := newTestServer(t, threeActivities)

	rec := s.do(http.MethodGet, "/API/seeTitle/walk_DOG", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"title":"Walk dog","description":null,"dueDate":null,"done":true}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/API/seeTitle/Walk%20dog", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/API/seeTitle/walk", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSearches(t *testing.T) {
	s := newTestServer(t, threeActivities)

	rec := s.do(http.MethodGet, "/API/t_search/MILK", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Buy milk 1"}, decodeStrings(t, rec))

	rec = s.do(http.MethodGet, "/API/t_search/zebra", "")
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = s.do(http.MethodGet, "/API/d_search/milk", "")
	assert.Equal(t, []string{" 3"}, decodeStrings(t, rec))

	rec = s.do(http.MethodGet, "/API/d_search/the", "")
	assert.Equal(t, []string{"Buy milk 1", " 3"}, decodeStrings(t, rec))

	rec = s.do(http.MethodGet, "/API/id_search/2", "")
	assert.Equal(t, []string{"Walk dog 2"}, decodeStrings(t, rec))

	rec = s.do(http.MethodGet, "/API/id_search/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeStrings(t, rec))

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/API/id_search/1.5", "").Code)
}

func TestWrongMethod(t *testing.T) {
	s := newTestServer(t, `[]`)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodGet, "/API/add", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodPost, "/API/all", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/elsewhere", "").Code)
}

func TestSaveFailureReturns500(t *testing.T) {
	s := newTestServer(t, `[]`)
	s.svc.Repo = repository.NewFileRepository(filepath.Join(t.TempDir(), "gone", "todos.json"))

	rec := s.do(http.MethodPost, "/API/add", `{"title":"kept in memory"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(http.MethodGet, "/API/all", "")
	assert.Equal(t, []string{"kept in memory 1"}, decodeStrings(t, rec))
}

func TestFeedThroughRouter(t *testing.T) {
	s := newTestServer(t, `[{"id":1,"title":"Buy milk"}]`)
	server := httptest.NewServer(s.handler)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/API/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() model.ActivityEvent {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var evt model.ActivityEvent
		require.NoError(t, conn.ReadJSON(&evt))
		return evt
	}

	assert.Equal(t, model.SnapshotEvent, read().Type)
	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	resp, err := http.Post(server.URL+"/API/add", "application/json", strings.NewReader(`{"title":"Walk dog"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	evt := read()
	assert.Equal(t, model.AddedEvent, evt.Type)
	payload, ok := evt.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Walk dog", payload["title"])
	assert.Equal(t, float64(2), payload["id"])
}
