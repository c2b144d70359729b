// internal/app/features/passwordreset/handler_test.go
package passwordreset_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/features/passwordreset"
	resetstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/passwordreset"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/mailer"
	"github.com/sportsbuddy/sportsbuddy/internal/testutil"
)

// captureMailer records the reset email instead of sending it.
type captureMailer struct {
	to    string
	data  mailer.ResetEmailData
	calls int
}

func (m *captureMailer) SendPasswordReset(ctx context.Context, to string, data mailer.ResetEmailData) error {
	m.to = to
	m.data = data
	m.calls++
	return nil
}

func newTestHandler(t *testing.T) (*passwordreset.Handler, *captureMailer, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	mail := &captureMailer{}
	h := passwordreset.NewHandler(db, mail, "http://sportsbuddy.test", 0, errorsfeature.NewErrorLogger(logger), logger)
	return h, mail, db
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// renderTolerant runs a handler whose success path renders a page. The
// template engine is not booted in tests, so a render panic is swallowed.
func renderTolerant(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestHandleRequest_IssuesTokenAndMailsLink(t *testing.T) {
	h, mail, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")

	rec := httptest.NewRecorder()
	renderTolerant(func() {
		h.HandleRequest(rec, postForm("/password-reset", url.Values{"email": {"asha@example.com"}}))
	})

	if mail.calls != 1 {
		t.Fatalf("expected 1 reset email, got %d", mail.calls)
	}
	if mail.to != "asha@example.com" {
		t.Errorf("email sent to %q", mail.to)
	}

	prefix := "http://sportsbuddy.test/password-reset/confirm?token="
	if !strings.HasPrefix(mail.data.ResetLink, prefix) {
		t.Fatalf("unexpected reset link %q", mail.data.ResetLink)
	}
	token := strings.TrimPrefix(mail.data.ResetLink, prefix)

	r, err := resetstore.New(db, 0).Peek(ctx, token)
	if err != nil {
		t.Fatalf("emailed token not stored: %v", err)
	}
	if r.UserID != user.ID {
		t.Errorf("token belongs to %s, want %s", r.UserID.Hex(), user.ID.Hex())
	}
}

func TestHandleRequest_UnknownEmailSendsNothing(t *testing.T) {
	h, mail, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	renderTolerant(func() {
		h.HandleRequest(rec, postForm("/password-reset", url.Values{"email": {"nobody@example.com"}}))
	})

	if mail.calls != 0 {
		t.Errorf("expected no email for an unknown address, got %d", mail.calls)
	}
}

func TestHandleConfirm_SetsNewPassword(t *testing.T) {
	h, _, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "Asha", "asha@example.com", "user")

	token, err := resetstore.New(db, 0).Create(ctx, user.ID, user.Email)
	if err != nil {
		t.Fatalf("Create token failed: %v", err)
	}

	rec := httptest.NewRecorder()
	h.HandleConfirm(rec, postForm("/password-reset/confirm", url.Values{
		"token":    {token},
		"password": {"brand-new-secret"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/login?reset=done" {
		t.Errorf("redirect = %q, want /login?reset=done", loc)
	}

	updated, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brand-new-secret")); err != nil {
		t.Errorf("stored hash does not match the new password: %v", err)
	}

	// Token is single use.
	if _, err := resetstore.New(db, 0).Peek(ctx, token); !errors.Is(err, storeerr.ErrNotFound) {
		t.Errorf("token still live after use: %v", err)
	}
}

func TestHandleConfirm_BadTokenRedirects(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleConfirm(rec, postForm("/password-reset/confirm", url.Values{
		"token":    {"deadbeef"},
		"password": {"brand-new-secret"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/password-reset?err=expired" {
		t.Errorf("redirect = %q, want /password-reset?err=expired", loc)
	}
}
