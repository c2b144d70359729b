// internal/app/features/passwordreset/handler.go
package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	resetstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/passwordreset"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/mailer"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// ResetMailer sends the reset link. Satisfied by mailer.Mailer.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to string, data mailer.ResetEmailData) error
}

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
	Mail        ResetMailer
	BaseURL     string
	ResetExpiry time.Duration // zero means the store default
}

func NewHandler(db *mongo.Database, mail ResetMailer, baseURL string, resetExpiry time.Duration, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		ErrLog:      errLog,
		Mail:        mail,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		ResetExpiry: resetExpiry,
	}
}

type requestFormData struct {
	viewdata.BaseVM
	Error string
	Email string
	Sent  bool
}

type confirmFormData struct {
	viewdata.BaseVM
	Error string
	Token string
}

// ServeRequest handles GET /password-reset.
func (h *Handler) ServeRequest(w http.ResponseWriter, r *http.Request) {
	var msg string
	if query.Get(r, "err") == "expired" {
		msg = "That reset link has expired or was already used. Request a new one."
	}
	templates.Render(w, r, "reset_request", requestFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Reset password", "/login"),
		Error:  msg,
	})
}

// HandleRequest handles POST /password-reset. The response is the same
// whether or not the address has an account, so the form cannot be used to
// discover registered emails.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "password reset: parse form failed", err, "Invalid form data.", "/password-reset")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if !validate.SimpleEmailValid(email) {
		templates.Render(w, r, "reset_request", requestFormData{
			BaseVM: viewdata.NewBaseVM(r, h.DB, "Reset password", "/login"),
			Error:  "Please enter a valid email address.",
			Email:  email,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.issueToken(ctx, email)

	templates.Render(w, r, "reset_request", requestFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Reset password", "/login"),
		Email:  email,
		Sent:   true,
	})
}

// issueToken creates and mails a reset link when the address has an
// account. Failures are logged only; the caller renders the same
// confirmation either way.
func (h *Handler) issueToken(ctx context.Context, email string) {
	user, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storeerr.ErrNotFound) {
			h.Log.Error("password reset: user lookup failed", zap.Error(err))
		}
		return
	}

	resets := resetstore.New(h.DB, h.ResetExpiry)
	token, err := resets.Create(ctx, user.ID, user.Email)
	if err != nil {
		h.Log.Error("password reset: token create failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		return
	}

	err = h.Mail.SendPasswordReset(ctx, user.Email, mailer.ResetEmailData{
		ResetLink: h.BaseURL + "/password-reset/confirm?token=" + token,
		ExpiresIn: expiryLabel(resets.Expiry()),
	})
	if err != nil {
		h.Log.Error("password reset: email send failed", zap.Error(err), zap.String("user_id", user.ID.Hex()))
	}
}

// ServeConfirm handles GET /password-reset/confirm?token=...
func (h *Handler) ServeConfirm(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := resetstore.New(h.DB, h.ResetExpiry).Peek(ctx, token); err != nil {
		h.redirectExpired(w, r, err)
		return
	}

	templates.Render(w, r, "reset_confirm", confirmFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Choose a new password", "/login"),
		Token:  token,
	})
}

// HandleConfirm handles POST /password-reset/confirm.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "password reset: parse form failed", err, "Invalid form data.", "/password-reset")
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	if len(password) < minPasswordLen {
		templates.Render(w, r, "reset_confirm", confirmFormData{
			BaseVM: viewdata.NewBaseVM(r, h.DB, "Choose a new password", "/login"),
			Error:  "Password must be at least 8 characters.",
			Token:  token,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reset, err := resetstore.New(h.DB, h.ResetExpiry).Consume(ctx, token)
	if err != nil {
		h.redirectExpired(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "password reset: hash failed", err, "Unable to reset your password right now.", "/password-reset")
		return
	}
	if err := userstore.New(h.DB).UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		h.ErrLog.LogServerError(w, r, "password reset: update failed", err, "Unable to reset your password right now.", "/password-reset")
		return
	}

	h.Log.Info("password reset completed", zap.String("user_id", reset.UserID.Hex()))
	http.Redirect(w, r, "/login?reset=done", http.StatusSeeOther)
}

func (h *Handler) redirectExpired(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storeerr.ErrNotFound) {
		http.Redirect(w, r, "/password-reset?err=expired", http.StatusSeeOther)
		return
	}
	h.ErrLog.LogServerError(w, r, "password reset: token lookup failed", err, "Unable to reset your password right now.", "/password-reset")
}

func expiryLabel(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		if h := int(d / time.Hour); h > 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	}
	if m := int(d / time.Minute); m > 1 {
		return fmt.Sprintf("%d minutes", m)
	}
	return "1 minute"
}
