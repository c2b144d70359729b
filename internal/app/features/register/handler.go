// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/timeouts"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/viewdata"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

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

type registerFormData struct {
	viewdata.BaseVM
	Error string
	Name  string
	Email string
}

// ServeRegister handles GET /register.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Create account", "/"),
	})
}

// HandleRegisterPost handles POST /register.
func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: parse form failed", err, "Invalid form data.", "/register")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if name == "" {
		h.renderFormWithError(w, r, "Please enter your name.", name, email)
		return
	}
	if !validate.SimpleEmailValid(email) {
		h.renderFormWithError(w, r, "Please enter a valid email address.", name, email)
		return
	}
	if len(password) < minPasswordLen {
		h.renderFormWithError(w, r, "Password must be at least 8 characters.", name, email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: hash password failed", err, "Unable to create your account right now.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := userstore.New(h.DB).Create(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			h.renderFormWithError(w, r, "An account with that email already exists.", name, email)
			return
		}
		h.ErrLog.LogServerError(w, r, "register: create user failed", err, "Unable to create your account right now.", "/register")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, id.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "register: session save failed", err, "Account created, but sign-in failed. Please log in.", "/login")
		return
	}

	h.Log.Info("user registered", zap.String("user_id", id.Hex()))
	http.Redirect(w, r, "/profile/edit", http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, name, email string) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Create account", "/"),
		Error:  msg,
		Name:   name,
		Email:  email,
	})
}
