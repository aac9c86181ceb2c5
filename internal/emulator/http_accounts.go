// Copyright (c) 2026 Canvio. All rights reserved.
// Author: dev@canvio.app

package emulator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canvio/canvio/internal/platform/respond"
)

// AccountHandler implements the account-API HTTP endpoints.
//
// # Scope
//
// Unlike the rest of the emulator surface, these endpoints answer in the
// vendor identity-toolkit wire format (flat success payload, nested error
// object with a code string) because the production client parses exactly
// that shape.
type AccountHandler struct {
	service *AccountService
}

// NewAccountHandler constructs a new [AccountHandler].
func NewAccountHandler(service *AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Routes returns a [chi.Router] with the account endpoints.
//
// # Endpoints
//   - POST /accounts:signUp             : Creates a password account.
//   - POST /accounts:signInWithPassword : Verifies credentials.
//   - POST /accounts:signInWithIdp      : Completes federated sign-in.
//   - POST /accounts:sendOobCode        : Issues a password reset code.
//   - POST /accounts:resetPassword      : Redeems a reset code.
func (handler *AccountHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/accounts:signUp", handler.signUp)
	router.Post("/accounts:signInWithPassword", handler.signInWithPassword)
	router.Post("/accounts:signInWithIdp", handler.signInWithIdp)
	router.Post("/accounts:sendOobCode", handler.sendOobCode)
	router.Post("/accounts:resetPassword", handler.resetPassword)

	return router
}

// accountRequest covers the overlapping fields of all account endpoints.
type accountRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	ProviderID  string `json:"providerId"`
	IDToken     string `json:"idToken"`
	RequestType string `json:"requestType"`
	OobCode     string `json:"oobCode"`
	NewPassword string `json:"newPassword"`
}

// signUp handles POST /v1/accounts:signUp.
func (handler *AccountHandler) signUp(writer http.ResponseWriter, request *http.Request) {
	var input accountRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeAccountError(writer, NewAccountError(CodeInvalidEmail))
		return
	}

	result, err := handler.service.SignUp(request.Context(), input.Email, input.Password, input.DisplayName)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	writeAuthResult(writer, result)
}

// signInWithPassword handles POST /v1/accounts:signInWithPassword.
func (handler *AccountHandler) signInWithPassword(writer http.ResponseWriter, request *http.Request) {
	var input accountRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeAccountError(writer, NewAccountError(CodeInvalidEmail))
		return
	}

	result, err := handler.service.SignInWithPassword(request.Context(), input.Email, input.Password)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	writeAuthResult(writer, result)
}

// signInWithIdp handles POST /v1/accounts:signInWithIdp.
func (handler *AccountHandler) signInWithIdp(writer http.ResponseWriter, request *http.Request) {
	var input accountRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeAccountError(writer, NewAccountError(CodeInvalidIdpResponse))
		return
	}

	result, err := handler.service.SignInWithIdp(request.Context(), input.ProviderID, input.IDToken)
	if err != nil {
		handler.fail(writer, request, err)
		return
	}

	writeAuthResult(writer, result)
}

// sendOobCode handles POST /v1/accounts:sendOobCode.
func (handler *AccountHandler) sendOobCode(writer http.ResponseWriter, request *http.Request) {
	var input accountRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil || input.RequestType != "PASSWORD_RESET" {
		writeAccountError(writer, NewAccountError(CodeInvalidEmail))
		return
	}

	if err := handler.service.SendOobCode(request.Context(), input.Email); err != nil {
		handler.fail(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, map[string]string{"email": input.Email})
}

// resetPassword handles POST /v1/accounts:resetPassword.
func (handler *AccountHandler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input accountRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		writeAccountError(writer, NewAccountError(CodeInvalidOobCode))
		return
	}

	if err := handler.service.ResetPassword(request.Context(), input.OobCode, input.NewPassword); err != nil {
		handler.fail(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, map[string]string{"requestType": "PASSWORD_RESET"})
}

// fail maps service errors onto the wire: protocol failures keep their code,
// anything else is surfaced through the standard respond path as a 500.
func (handler *AccountHandler) fail(writer http.ResponseWriter, request *http.Request, err error) {
	var accountErr *AccountError
	if errors.As(err, &accountErr) {
		writeAccountError(writer, accountErr)
		return
	}
	respond.Error(writer, request, err)
}

// writeAuthResult emits the toolkit success payload.
func writeAuthResult(writer http.ResponseWriter, result *AuthResult) {
	respond.JSON(writer, http.StatusOK, map[string]any{
		"localId":     result.Account.ID,
		"email":       result.Account.Email,
		"displayName": result.Account.DisplayName,
		"photoUrl":    result.Account.PhotoURL,
		"idToken":     result.IDToken,
	})
}

// writeAccountError emits the toolkit error payload.
func writeAccountError(writer http.ResponseWriter, accountErr *AccountError) {
	respond.JSON(writer, accountErr.HTTPStatus, map[string]any{
		"error": map[string]any{
			"code":    accountErr.HTTPStatus,
			"message": accountErr.Code,
		},
	})
}
