package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"licensegate/licenseserver/internal/metrics"
	"licensegate/licenseserver/internal/service"
)

var validate = validator.New()

type Handler struct {
	svc     *service.Service
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewHandler(svc *service.Service, m *metrics.Metrics, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, metrics: m, log: log}
}

// apiError keeps the {"success":false,"error":...} envelope existing
// clients parse.
type apiError struct {
	status  int
	Success bool   `json:"success"`
	Message string `json:"error"`
}

func (e *apiError) Error() string {
	return e.Message
}

func (e *apiError) GetStatus() int {
	return e.status
}

var errMissingFields = &apiError{status: http.StatusBadRequest, Message: "Missing required fields"}

// --- Request/Response types ---

// Input bodies are optional to huma; validate.Struct reports anything
// missing, including an empty request.

type StatusOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

type ResultBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ResultOutput struct {
	Body ResultBody
}

type AmountOutput struct {
	Body struct {
		Success  bool  `json:"success"`
		Licenses int64 `json:"licenses"`
	}
}

type CreateLicenseInput struct {
	Body struct {
		AuthToken string `json:"authToken" required:"false" validate:"required"`
		Duration  *int   `json:"duration" required:"false" validate:"required"`
	} `required:"false"`
}

type CreateLicenseOutput struct {
	Body struct {
		ResultBody
		License string `json:"license,omitempty"`
	}
}

type AdminLicenseInput struct {
	Body struct {
		AuthToken string `json:"authToken" required:"false" validate:"required"`
		License   string `json:"license" required:"false" validate:"required"`
	} `required:"false"`
}

type ClaimInput struct {
	Body struct {
		License string `json:"license" required:"false" validate:"required"`
		Owner   string `json:"owner" required:"false" validate:"required"`
	} `required:"false"`
}

type AuthInput struct {
	Body struct {
		IP      string `json:"ip" required:"false" validate:"required"`
		License string `json:"license" required:"false" validate:"required"`
	} `required:"false"`
}

type AuthOutput struct {
	Body struct {
		Success bool   `json:"success"`
		Valid   bool   `json:"valid"`
		Message string `json:"message,omitempty"`
	}
}

type LicenseInput struct {
	Body struct {
		License string `json:"license" required:"false" validate:"required"`
	} `required:"false"`
}

type ActiveOutput struct {
	Body struct {
		ResultBody
		Active bool `json:"active"`
	}
}

type CreateUserInput struct {
	Body struct {
		Username string  `json:"username" required:"false" validate:"required"`
		Email    *string `json:"email" required:"false" validate:"required"`
		Password string  `json:"password" required:"false" validate:"required"`
	} `required:"false"`
}

type LoginInput struct {
	Body struct {
		Username string `json:"username" required:"false" validate:"required"`
		Password string `json:"password" required:"false" validate:"required"`
	} `required:"false"`
}

type TokenOutput struct {
	Body struct {
		ResultBody
		Token string `json:"token,omitempty"`
	}
}

type RankInput struct {
	Body struct {
		Token string `json:"token" required:"false" validate:"required"`
	} `required:"false"`
}

type RankOutput struct {
	Body struct {
		ResultBody
		Rank int `json:"rank,omitempty"`
	}
}

// --- Register routes ---

func (h *Handler) RegisterRoutes(r chi.Router) {
	api := humachi.New(r, huma.DefaultConfig("License API", "1.0.0"))

	huma.Register(api, huma.Operation{
		OperationID: "licenses-status",
		Method:      http.MethodGet,
		Path:        "/licenses",
		Summary:     "License service status",
	}, h.online)
	huma.Register(api, huma.Operation{
		OperationID: "licenses-amount",
		Method:      http.MethodGet,
		Path:        "/licenses/amount",
		Summary:     "Count licenses",
	}, h.amount)
	huma.Register(api, huma.Operation{
		OperationID: "create-license",
		Method:      http.MethodPost,
		Path:        "/licenses/createLicense",
		Summary:     "Create a license",
	}, h.createLicense)
	huma.Register(api, huma.Operation{
		OperationID: "suspend-license",
		Method:      http.MethodPost,
		Path:        "/licenses/suspend",
		Summary:     "Suspend a license",
	}, h.suspendLicense)
	huma.Register(api, huma.Operation{
		OperationID: "delete-license",
		Method:      http.MethodDelete,
		Path:        "/licenses/delete",
		Summary:     "Delete a license",
	}, h.deleteLicense)
	huma.Register(api, huma.Operation{
		OperationID: "claim-license",
		Method:      http.MethodPost,
		Path:        "/licenses/claim",
		Summary:     "Claim a license",
	}, h.claimLicense)
	huma.Register(api, huma.Operation{
		OperationID: "authenticate-license",
		Method:      http.MethodPost,
		Path:        "/licenses/auth",
		Summary:     "Authenticate a license for an address",
	}, h.authenticate)
	huma.Register(api, huma.Operation{
		OperationID: "license-active",
		Method:      http.MethodPost,
		Path:        "/licenses/active",
		Summary:     "Check whether a license is active",
	}, h.active)

	huma.Register(api, huma.Operation{
		OperationID: "users-status",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "User service status",
	}, h.online)
	huma.Register(api, huma.Operation{
		OperationID: "create-user",
		Method:      http.MethodPost,
		Path:        "/users/createUser",
		Summary:     "Create a user",
	}, h.createUser)
	huma.Register(api, huma.Operation{
		OperationID: "user-rank",
		Method:      http.MethodPost,
		Path:        "/users/getUserRank",
		Summary:     "Get the rank of a token's user",
	}, h.userRank)
	huma.Register(api, huma.Operation{
		OperationID: "user-login",
		Method:      http.MethodPost,
		Path:        "/users/login",
		Summary:     "Exchange credentials for a token",
	}, h.login)
}

// --- Handlers ---

func (h *Handler) online(ctx context.Context, input *struct{}) (*StatusOutput, error) {
	resp := &StatusOutput{}
	resp.Body.Status = "online"
	return resp, nil
}

func (h *Handler) amount(ctx context.Context, input *struct{}) (*AmountOutput, error) {
	n, err := h.svc.CountLicenses(ctx)
	if err != nil {
		return nil, h.internal(err, "count licenses")
	}
	resp := &AmountOutput{}
	resp.Body.Success = true
	resp.Body.Licenses = n
	return resp, nil
}

func (h *Handler) createLicense(ctx context.Context, input *CreateLicenseInput) (*CreateLicenseOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	key, err := h.svc.CreateLicense(ctx, input.Body.AuthToken, *input.Body.Duration)
	resp := &CreateLicenseOutput{}
	if err != nil {
		msg, ok := refusal(err, "Invalid license")
		if !ok {
			return nil, h.internal(err, "create license")
		}
		resp.Body.ResultBody = ResultBody{Message: msg}
		return resp, nil
	}
	h.metrics.ObserveLicenseOp("create")
	resp.Body.ResultBody = ResultBody{Success: true, Message: "License created"}
	resp.Body.License = key
	return resp, nil
}

func (h *Handler) suspendLicense(ctx context.Context, input *AdminLicenseInput) (*ResultOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	err := h.svc.SuspendLicense(ctx, input.Body.AuthToken, input.Body.License)
	return h.result(err, "suspend")
}

func (h *Handler) deleteLicense(ctx context.Context, input *AdminLicenseInput) (*ResultOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	err := h.svc.DeleteLicense(ctx, input.Body.AuthToken, input.Body.License)
	return h.result(err, "delete")
}

func (h *Handler) claimLicense(ctx context.Context, input *ClaimInput) (*ResultOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	err := h.svc.ClaimLicense(ctx, input.Body.License, input.Body.Owner)
	out, herr := h.result(err, "claim")
	if herr == nil && out.Body.Success {
		out.Body.Message = "License claimed"
	}
	return out, herr
}

func (h *Handler) authenticate(ctx context.Context, input *AuthInput) (*AuthOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	resp := &AuthOutput{}
	verdict, err := h.svc.Authenticate(ctx, input.Body.License, input.Body.IP)
	if err != nil {
		if service.IsNotFound(err) {
			h.metrics.ObserveAuth(metrics.OutcomeUnknown)
			return resp, nil
		}
		h.metrics.ObserveAuth(metrics.OutcomeError)
		return nil, h.internal(err, "authenticate license")
	}
	if verdict.Valid {
		h.metrics.ObserveAuth(metrics.OutcomeValid)
	} else {
		h.metrics.ObserveAuth(metrics.OutcomeInvalid)
	}
	resp.Body.Success = true
	resp.Body.Valid = verdict.Valid
	resp.Body.Message = verdict.Message
	return resp, nil
}

func (h *Handler) active(ctx context.Context, input *LicenseInput) (*ActiveOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	resp := &ActiveOutput{}
	active, err := h.svc.IsActive(ctx, input.Body.License)
	if err != nil {
		msg, ok := refusal(err, "Invalid license")
		if !ok {
			return nil, h.internal(err, "check license")
		}
		resp.Body.ResultBody = ResultBody{Message: msg}
		return resp, nil
	}
	resp.Body.Success = true
	resp.Body.Active = active
	return resp, nil
}

func (h *Handler) createUser(ctx context.Context, input *CreateUserInput) (*TokenOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	token, err := h.svc.CreateUser(ctx, input.Body.Username, *input.Body.Email, input.Body.Password)
	return h.token(err, token, "Account created", "create user")
}

func (h *Handler) login(ctx context.Context, input *LoginInput) (*TokenOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	token, err := h.svc.Login(ctx, input.Body.Username, input.Body.Password)
	return h.token(err, token, "Logged in", "login")
}

func (h *Handler) userRank(ctx context.Context, input *RankInput) (*RankOutput, error) {
	if err := validate.Struct(input.Body); err != nil {
		return nil, errMissingFields
	}
	resp := &RankOutput{}
	rank, err := h.svc.Rank(ctx, input.Body.Token)
	if err != nil {
		msg, ok := refusal(err, "Invalid token")
		if !ok {
			return nil, h.internal(err, "user rank")
		}
		resp.Body.ResultBody = ResultBody{Message: msg}
		return resp, nil
	}
	resp.Body.ResultBody = ResultBody{Success: true, Message: "Rank retrieved"}
	resp.Body.Rank = rank
	return resp, nil
}

func (h *Handler) result(err error, op string) (*ResultOutput, error) {
	resp := &ResultOutput{}
	if err != nil {
		msg, ok := refusal(err, "Invalid license")
		if !ok {
			return nil, h.internal(err, op+" license")
		}
		resp.Body.Message = msg
		return resp, nil
	}
	h.metrics.ObserveLicenseOp(op)
	resp.Body.Success = true
	return resp, nil
}

func (h *Handler) token(err error, token, okMsg, op string) (*TokenOutput, error) {
	resp := &TokenOutput{}
	if err != nil {
		msg, ok := refusal(err, "Not found")
		if !ok {
			return nil, h.internal(err, op)
		}
		resp.Body.ResultBody = ResultBody{Message: msg}
		return resp, nil
	}
	resp.Body.ResultBody = ResultBody{Success: true, Message: okMsg}
	resp.Body.Token = token
	return resp, nil
}

// refusal turns a domain error into the message of a success=false reply.
// Anything else is an internal failure.
func refusal(err error, notFoundMsg string) (string, bool) {
	switch {
	case service.IsNotFound(err):
		return notFoundMsg, true
	case service.IsAuth(err), service.IsValidation(err), service.IsConflict(err):
		return err.Error(), true
	default:
		return "", false
	}
}

func (h *Handler) internal(err error, op string) error {
	h.log.Error().Err(err).Str("op", op).Msg("request failed")
	return &apiError{status: http.StatusInternalServerError, Message: "Internal Server Error"}
}
