package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/execution-hub/contest-hub/internal/application/draw"
	appLifecycle "github.com/execution-hub/contest-hub/internal/application/lifecycle"
	"github.com/execution-hub/contest-hub/internal/application/scheduler"
	"github.com/execution-hub/contest-hub/internal/domain/contest"
	"github.com/execution-hub/contest-hub/internal/infrastructure/announcer"
	"github.com/execution-hub/contest-hub/internal/infrastructure/filestore"
	"github.com/execution-hub/contest-hub/internal/infrastructure/journal"
	"github.com/execution-hub/contest-hub/internal/infrastructure/sse"
)

const operatorToken = "s3cret-token"

type testAPI struct {
	srv *httptest.Server
}

func newTestAPI(t *testing.T, withAuth bool) *testAPI {
	t.Helper()
	logger := zerolog.Nop()
	store, err := filestore.New(t.TempDir(), logger)
	require.NoError(t, err)
	hub := sse.NewHub(logger)
	broadcast := announcer.NewBroadcast(hub, announcer.NewMemoryBook(), "http://hub.test", logger,
		announcer.WithSystemIdentity("SYSTEM"))
	sched := scheduler.New(logger)
	svc := appLifecycle.NewService(store, broadcast, journal.NewMemory(), sched,
		draw.NewSelector("SYSTEM", logger, draw.WithSeed(3)), logger)
	sched.Bind(svc.HandleDeadline)

	opts := Options{StreamEnabled: true}
	if withAuth {
		hash, err := bcrypt.GenerateFromPassword([]byte(operatorToken), bcrypt.MinCost)
		require.NoError(t, err)
		opts.OperatorTokenHash = string(hash)
	}
	srv := httptest.NewServer(NewServer(svc, broadcast, hub, opts, logger).Router())
	t.Cleanup(func() {
		sched.Stop()
		hub.Stop()
		srv.Close()
	})
	return &testAPI{srv: srv}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+operatorToken)
	req.Header.Set("X-Actor", "alice")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, false)
	var body map[string]string
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/healthz", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestOperatorRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t, true)

	resp, err := http.Get(api.srv.URL + "/v1/contests")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, api.srv.URL+"/v1/contests", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var list map[string]interface{}
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/v1/contests", nil, &list))
}

func TestContestLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t, true)

	var created contest.Contest
	status := api.do(t, http.MethodPost, "/v1/contests", map[string]interface{}{
		"title":   "Mechanical keyboard",
		"winners": 2,
		"endsAt":  "1h",
		"channel": "general",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, contest.StatusActive, created.Status)
	assert.Equal(t, "alice", created.HostID)
	assert.Equal(t, "http://hub.test/v1/contests/"+created.ID, created.Announcement.URL)

	// entrant registration is public
	for _, id := range []string{"u1", "u2", "u3"} {
		resp, err := http.Post(api.srv.URL+"/v1/contests/"+created.ID+"/entrants", "application/json",
			bytes.NewBufferString(`{"id":"`+id+`"}`))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}

	var got contest.Contest
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/v1/contests/"+created.ID, nil, &got))
	assert.Equal(t, created.ID, got.ID)

	var byMessage contest.Contest
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/v1/contests/"+created.Announcement.MessageID, nil, &byMessage))
	assert.Equal(t, created.ID, byMessage.ID)

	var edited contest.Contest
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPatch, "/v1/contests/"+created.ID,
		map[string]interface{}{"title": "Mechanical keyboard (TKL)"}, &edited))
	assert.Equal(t, "Mechanical keyboard (TKL)", edited.Title)
	assert.True(t, edited.EndsAt.Equal(created.EndsAt))

	var ended contest.Contest
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/v1/contests/"+created.ID+"/end", nil, &ended))
	assert.Equal(t, contest.StatusEnded, ended.Status)
	assert.Equal(t, contest.ReasonManual, ended.EndReason)
	require.Len(t, ended.Winners, 2)
	for _, w := range ended.Winners {
		assert.Contains(t, []string{"u1", "u2", "u3"}, w)
	}

	var conflict apiError
	assert.Equal(t, http.StatusConflict, api.do(t, http.MethodPost, "/v1/contests/"+created.ID+"/entrants",
		map[string]string{"id": "late"}, &conflict))
	assert.Equal(t, "CONFLICT", conflict.Error)

	var again contest.Contest
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/v1/contests/"+created.ID+"/end", nil, &again))
	assert.Equal(t, ended.Winners, again.Winners)

	var rec contest.RerollRecord
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/v1/contests/"+created.ID+"/reroll",
		map[string]int{"count": 1}, &rec))
	assert.Equal(t, 1, rec.Count)
	assert.Len(t, rec.Winners, 1)

	var list struct {
		Items []contest.Contest `json:"items"`
		Total int               `json:"total"`
	}
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/v1/contests?status=ended", nil, &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Len(t, list.Items[0].RerollHistory, 1)

	var logs map[string]string
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/v1/contests/"+created.ID+"/logs", nil, &logs))
	assert.Equal(t, "memory://"+journal.SanitizeID(created.ID), logs["target"])

	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/v1/contests/"+created.ID, nil, nil))
	var missing apiError
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/v1/contests/"+created.ID, nil, &missing))
	assert.Equal(t, "NOT_FOUND", missing.Error)
}

func TestRequestErrorsMapToStatus(t *testing.T) {
	api := newTestAPI(t, false)

	var e apiError
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/v1/contests",
		map[string]interface{}{"title": "x", "winners": 0, "endsAt": "1h"}, &e))
	assert.Equal(t, "INVALID_PARAM", e.Error)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/v1/contests",
		map[string]interface{}{"title": "x", "winners": 1, "endsAt": "1h", "prize": "car"}, &e))

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/v1/contests",
		map[string]interface{}{"title": "x", "winners": 1, "endsAt": "yesterday"}, &e))

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/v1/contests?status=paused", nil, &e))

	var c contest.Contest
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/v1/contests",
		map[string]interface{}{"title": "x", "winners": 1, "endsAt": "2h"}, &c))

	assert.Equal(t, http.StatusConflict, api.do(t, http.MethodPost, "/v1/contests/"+c.ID+"/reroll", nil, &e))
	assert.Equal(t, "CONFLICT", e.Error)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPost, "/v1/contests/nope/end", nil, &e))
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/v1/contests/"+c.ID+"/entrants",
		map[string]string{"id": " "}, &e))
}

func TestStreamDeliversAnnouncementEvents(t *testing.T) {
	api := newTestAPI(t, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.srv.URL+"/v1/stream?channels=general", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, ": connected", lines.Text())

	var c contest.Contest
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/v1/contests",
		map[string]interface{}{"title": "Stickers", "winners": 1, "endsAt": "1h", "channel": "general"}, &c))

	var events []string
	for lines.Scan() {
		if ev, ok := strings.CutPrefix(lines.Text(), "event: "); ok {
			events = append(events, ev)
			break
		}
	}
	assert.Equal(t, []string{"announcement.posted"}, events)
}

func TestEntrantAttributesRequireOperatorToken(t *testing.T) {
	api := newTestAPI(t, true)

	var c contest.Contest
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/v1/contests", map[string]interface{}{
		"title": "Badge", "winners": 1, "endsAt": "1h", "requirement": "level >= 10",
	}, &c))

	register := func(body string, token string) int {
		req, err := http.NewRequest(http.MethodPost, api.srv.URL+"/v1/contests/"+c.ID+"/entrants", strings.NewReader(body))
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusAccepted, register(`{"id":"u1","name":"Ann"}`, ""))
	assert.Equal(t, http.StatusForbidden, register(`{"id":"u2","attributes":{"level":99}}`, ""))
	assert.Equal(t, http.StatusForbidden, register(`{"id":"u3","bot":true}`, "wrong"))
	assert.Equal(t, http.StatusAccepted, register(`{"id":"u2","attributes":{"level":99}}`, operatorToken))

	var ended contest.Contest
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/v1/contests/"+c.ID+"/end", nil, &ended))
	assert.Equal(t, []string{"u2"}, ended.Winners)
}
