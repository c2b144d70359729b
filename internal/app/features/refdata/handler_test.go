// internal/app/features/refdata/handler_test.go
package refdata_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/features/refdata"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	refdatastore "github.com/sportsbuddy/sportsbuddy/internal/app/store/refdata"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/schema"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auditlog"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
)

func newTestHandler(t *testing.T) (*refdata.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := schema.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	logger := zap.NewNop()
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Mode: "db"})
	errLog := errorsfeature.NewErrorLogger(logger)
	return refdata.NewHandler(db, auditLog, errLog, logger), db
}

func postForm(target string, values url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

// renderTolerant runs a handler that may render an error page. The template
// engine is not booted in tests, so a render panic after the status write is
// swallowed.
func renderTolerant(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestHandleCreate_Sport(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.AdminUser()
	req := postForm("/admin/refdata/sports", url.Values{"name": {"Badminton"}}, admin)
	req = testutil.WithChiURLParam(req, "kind", "sports")
	rec := testutil.NewRecorder()

	h.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/admin/refdata")

	sports, err := refdatastore.New(db).ListSports(ctx)
	if err != nil {
		t.Fatalf("ListSports: %v", err)
	}
	if len(sports) != 1 || sports[0].Name != "Badminton" {
		t.Errorf("sports after create: %+v", sports)
	}

	entries, err := audit.New(db).List(ctx, audit.QueryFilter{Action: audit.ActionCreateRefData})
	if err != nil {
		t.Fatalf("audit List: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("audit entries: got %d, want 1", len(entries))
	}
}

func TestHandleCreate_DuplicateRedirectsWithFlash(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateSport(ctx, "Tennis")

	admin := testutil.AdminUser()
	req := postForm("/admin/refdata/sports", url.Values{"name": {"TENNIS"}}, admin)
	req = testutil.WithChiURLParam(req, "kind", "sports")
	rec := testutil.NewRecorder()

	h.HandleCreate(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/admin/refdata?err=duplicate")
}

func TestHandleCreate_AreaRequiresCity(t *testing.T) {
	h, _ := newTestHandler(t)

	admin := testutil.AdminUser()
	req := postForm("/admin/refdata/areas", url.Values{"name": {"Andheri"}}, admin)
	req = testutil.WithChiURLParam(req, "kind", "areas")
	rec := testutil.NewRecorder()

	renderTolerant(func() { h.HandleCreate(rec.ResponseRecorder, req) })
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleUpdateAndDelete_City(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	city := fx.CreateCity(ctx, "Bombay")

	admin := testutil.AdminUser()
	req := postForm("/admin/refdata/cities/"+city.ID.Hex()+"/update", url.Values{"name": {"Mumbai"}}, admin)
	req = testutil.WithChiURLParam(req, "kind", "cities")
	req = testutil.WithChiURLParam(req, "id", city.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleUpdate(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/admin/refdata")

	cities, err := refdatastore.New(db).ListCities(ctx)
	if err != nil {
		t.Fatalf("ListCities: %v", err)
	}
	if len(cities) != 1 || cities[0].Name != "Mumbai" {
		t.Errorf("cities after rename: %+v", cities)
	}

	req = postForm("/admin/refdata/cities/"+city.ID.Hex()+"/delete", url.Values{}, admin)
	req = testutil.WithChiURLParam(req, "kind", "cities")
	req = testutil.WithChiURLParam(req, "id", city.ID.Hex())
	rec = testutil.NewRecorder()

	h.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertRedirect(t, "/admin/refdata")

	cities, err = refdatastore.New(db).ListCities(ctx)
	if err != nil {
		t.Fatalf("ListCities: %v", err)
	}
	if len(cities) != 0 {
		t.Errorf("cities after delete: %+v", cities)
	}
}

func TestHandleCreate_UnknownKind(t *testing.T) {
	h, _ := newTestHandler(t)

	admin := testutil.AdminUser()
	req := postForm("/admin/refdata/colors", url.Values{"name": {"Red"}}, admin)
	req = testutil.WithChiURLParam(req, "kind", "colors")
	rec := testutil.NewRecorder()

	renderTolerant(func() { h.HandleCreate(rec.ResponseRecorder, req) })
	rec.AssertStatus(t, http.StatusNotFound)
}
