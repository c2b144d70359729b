// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Notice    string
	Email     string
	ReturnURL string
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var notice string
	if query.Get(r, "reset") == "done" {
		notice = "Your password has been reset. Sign in with your new password."
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, h.DB, "Sign in", "/"),
		Notice:    notice,
		ReturnURL: safeReturn(query.Get(r, "return")),
	})
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	ret := safeReturn(r.FormValue("return"))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, ret)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storeerr.ErrNotFound) {
			h.renderFormWithError(w, r, "Email or password is incorrect.", email, ret)
			return
		}
		h.ErrLog.LogServerError(w, r, "login: user lookup failed", err, "Unable to sign in right now.", "/login")
		return
	}
	if user.Status != "" && user.Status != "active" {
		h.renderFormWithError(w, r, "This account is disabled.", email, ret)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		h.renderFormWithError(w, r, "Email or password is incorrect.", email, ret)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "login: session save failed", err, "Unable to sign in right now.", "/login")
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", user.ID.Hex()))

	if ret == "" {
		ret = "/events"
	}
	http.Redirect(w, r, ret, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, ret string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, h.DB, "Sign in", "/"),
		Error:     msg,
		Email:     email,
		ReturnURL: ret,
	})
}

// safeReturn only allows same-site relative return URLs.
func safeReturn(ret string) string {
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return ""
	}
	return ret
}
