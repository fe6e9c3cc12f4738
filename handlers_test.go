package agora_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"

	"github.com/agorafeed/agora"
	"github.com/agorafeed/agora/activity"
	"github.com/agorafeed/agora/memstore"
	"github.com/agorafeed/agora/prefmigrate"
	"github.com/agorafeed/agora/rankmaint"
)

type testContext struct {
	c      *qt.C
	server *agora.Server
	store  *memstore.MemStore
	now    time.Time
}

func newTestContext(c *qt.C) *testContext {
	now, _ := time.Parse(time.RFC3339, "2020-06-01T12:00:00Z")
	old := agora.NowFunc
	agora.NowFunc = func() time.Time { return now }
	c.Cleanup(func() { agora.NowFunc = old })

	store := memstore.New()
	logger := zerolog.Nop()

	maintainer := rankmaint.New(store, logger, rankmaint.Config{PagesPerSecond: 1000})
	tracker := activity.NewTracker(store, logger)

	migrators := []agora.PreferenceMigrator{}
	for _, ret := range agora.Retirements {
		migrators = append(migrators, prefmigrate.New(store, logger, ret))
	}

	server := agora.NewServer(&agora.ServerConfig{Addr: "localhost:8081"}, logger, store, maintainer, tracker, migrators)
	c.Assert(server.Prepare(), qt.IsNil)

	return &testContext{c: c, server: server, store: store, now: now}
}

func (tc *testContext) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	res := httptest.NewRecorder()
	tc.server.ServeHTTP(res, req)
	return res
}

func TestHandleHealth(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)

	res := tc.do("GET", "/health", "")
	c.Assert(res.Code, qt.Equals, http.StatusOK)
}

func TestHandleScoreChange(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)

	tc.store.PutGroup(&agora.Group{ID: "g1", InteractionsMonth: 10})
	tc.store.PutItem(&agora.Item{ID: "it1", GroupID: "g1", Score: 7, Published: tc.now.Add(-time.Hour)})

	res := tc.do("POST", "/events/score-change", `{"item_id": "it1"}`)
	c.Assert(res.Code, qt.Equals, http.StatusAccepted)

	item, err := tc.store.FindItem(context.Background(), "it1")
	c.Assert(err, qt.IsNil)
	c.Assert(item.Rank > 0, qt.IsTrue)

	c.Run("bad payload", func(c *qt.C) {
		res := tc.do("POST", "/events/score-change", `{`)
		c.Assert(res.Code, qt.Equals, http.StatusBadRequest)
	})

	c.Run("missing item", func(c *qt.C) {
		res := tc.do("POST", "/events/score-change", `{"item_id": "ghost"}`)
		c.Assert(res.Code, qt.Equals, http.StatusInternalServerError)
	})
}

func TestHandleInteraction(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)

	tc.store.PutGroup(&agora.Group{ID: "g1"})
	tc.store.PutItem(&agora.Item{ID: "it1", GroupID: "g1", Score: 7, Published: tc.now.Add(-time.Hour), Upvotes: 8})

	res := tc.do("POST", "/events/interaction", `{"group_id": "g1"}`)
	c.Assert(res.Code, qt.Equals, http.StatusAccepted)

	group, err := tc.store.FindGroup(context.Background(), "g1")
	c.Assert(err, qt.IsNil)
	c.Assert(group.InteractionsMonth, qt.Equals, int64(8))

	item, err := tc.store.FindItem(context.Background(), "it1")
	c.Assert(err, qt.IsNil)
	c.Assert(item.Rank > 0, qt.IsTrue, qt.Commentf("ranks must follow the refreshed volume"))
}

func TestRetirementEndpoints(t *testing.T) {
	c := qt.New(t)
	tc := newTestContext(c)

	tc.store.PutUser(&agora.User{ID: "1", Name: "ada", SortPreference: agora.SortScaled})

	res := tc.do("GET", "/retirements/scaled", "")
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	c.Assert(res.Body.String(), qt.Contains, `"status":"active"`)

	res = tc.do("POST", "/retirements/scaled/apply", "")
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	c.Assert(res.Body.String(), qt.Contains, `"status":"retired"`)

	user, err := tc.store.FindUser("1")
	c.Assert(err, qt.IsNil)
	c.Assert(user.SortPreference, qt.Equals, agora.SortHot)

	c.Run("unknown value", func(c *qt.C) {
		res := tc.do("GET", "/retirements/bogus", "")
		c.Assert(res.Code, qt.Equals, http.StatusNotFound)

		res = tc.do("POST", "/retirements/bogus/apply", "")
		c.Assert(res.Code, qt.Equals, http.StatusNotFound)
	})

	c.Run("applying twice is a no-op", func(c *qt.C) {
		res := tc.do("POST", "/retirements/scaled/apply", "")
		c.Assert(res.Code, qt.Equals, http.StatusOK)
		c.Assert(res.Body.String(), qt.Contains, `"status":"retired"`)
	})
}
