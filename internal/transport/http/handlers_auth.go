package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"olhopix/internal/auth/models"
	dErrors "olhopix/pkg/domain-errors"
	"olhopix/pkg/platform/httputil"
	"olhopix/pkg/requestcontext"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type AuthService interface {
	Register(ctx context.Context, input models.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
}

type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	TaxID    string `json:"tax_id" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *registerRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.TaxID = strings.TrimSpace(r.TaxID)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *registerRequest) Validate() error {
	return validationError(validate.Struct(r))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *loginRequest) Validate() error {
	return validationError(validate.Struct(r))
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// HandleRegister handles POST /api/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.auth.Register(ctx, models.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		TaxID:    req.TaxID,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		TaxID:     user.TaxID,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
	})
}

// HandleLogin handles POST /api/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}

// validationError converts a validator.Struct result into a coded domain
// error naming the first failing field.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		return dErrors.New(dErrors.CodeValidation, field+" failed "+verrs[0].Tag()+" validation")
	}
	return dErrors.New(dErrors.CodeValidation, "invalid request")
}
