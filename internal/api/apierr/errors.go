package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/gameofchests/internal/model"
	"github.com/mcoot/gameofchests/internal/services/bot"
	"github.com/mcoot/gameofchests/internal/services/identity"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeNotSupported      = "NOT_SUPPORTED"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeNoRoleAvailable   = "NO_ROLE_AVAILABLE"
	CodeRoleTaken         = "ROLE_TAKEN"
	CodeActiveRound       = "ACTIVE_ROUND"
	CodeNotInRoom         = "NOT_IN_ROOM"
	CodeInvalidRole       = "INVALID_ROLE"
	CodeNotPresenter      = "NOT_PRESENTER"
	CodeNotPlacer         = "NOT_PLACER"
	CodeAlreadyOffered    = "ALREADY_OFFERED"
	CodeNoBasketOffered   = "NO_BASKET_OFFERED"
	CodeGameFinished      = "GAME_FINISHED"
	CodeGameNotFinished   = "GAME_NOT_FINISHED"
	CodeCoinUnavailable   = "COIN_UNAVAILABLE"
	CodeWaitingForPlayers = "WAITING_FOR_PLAYERS"
	CodeInvalidBasket     = "INVALID_BASKET"
	CodeInvalidSettings   = "INVALID_SETTINGS"
	CodeConflict          = "CONFLICT"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeUnknownStrategy   = "UNKNOWN_STRATEGY"
	CodeBotPresent        = "BOT_PRESENT"
	CodeNoBot             = "NO_BOT"
	CodeInternalError     = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Describe returns the status and body that WriteError would send for err
func Describe(err error) (int, APIError) {
	he := toHTTPError(err)
	return he.status, he.apiError
}

// mapping lists sentinel errors in match order
var mapping = []struct {
	err    error
	status int
	code   string
	msg    string
}{
	{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound, "Room not found"},
	{model.ErrRoomFull, http.StatusConflict, CodeRoomFull, "Both roles are taken"},
	{model.ErrNoRoleAvailable, http.StatusConflict, CodeNoRoleAvailable, "Requested role is not available"},
	{model.ErrRoleTaken, http.StatusConflict, CodeRoleTaken, "Role is held by someone else"},
	{model.ErrActiveRound, http.StatusConflict, CodeActiveRound, "A round is in progress"},
	{model.ErrNotInRoom, http.StatusForbidden, CodeNotInRoom, "Not a participant of this room"},
	{model.ErrInvalidRole, http.StatusBadRequest, CodeInvalidRole, "Role must be presenter or placer"},
	{model.ErrNotPresenter, http.StatusForbidden, CodeNotPresenter, "Only the presenter can offer a basket"},
	{model.ErrNotPlacer, http.StatusForbidden, CodeNotPlacer, "Only the placer can place a coin"},
	{model.ErrAlreadyOffered, http.StatusConflict, CodeAlreadyOffered, "A basket is already offered"},
	{model.ErrNoBasketOffered, http.StatusConflict, CodeNoBasketOffered, "No basket has been offered"},
	{model.ErrGameFinished, http.StatusConflict, CodeGameFinished, "The game is finished"},
	{model.ErrGameNotFinished, http.StatusConflict, CodeGameNotFinished, "The game is not finished"},
	{model.ErrCoinUnavailable, http.StatusConflict, CodeCoinUnavailable, "Coin is not available"},
	{model.ErrWaitingForPlayers, http.StatusConflict, CodeWaitingForPlayers, "Waiting for both roles to be filled"},
	{model.ErrInvalidBasket, http.StatusBadRequest, CodeInvalidBasket, "Basket must be 0, 1 or 2"},
	{model.ErrInvalidSettings, http.StatusBadRequest, CodeInvalidSettings, "Coin count or compensation out of range"},
	{model.ErrConflict, http.StatusConflict, CodeConflict, "Too many concurrent updates, try again"},
	{model.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable, "Room store is unavailable"},
	{model.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token"},
	{bot.ErrUnknownStrategy, http.StatusBadRequest, CodeUnknownStrategy, "Strategy must be random or greedy"},
	{bot.ErrBotPresent, http.StatusConflict, CodeBotPresent, "Room already has a bot"},
	{bot.ErrNoBot, http.StatusNotFound, CodeNoBot, "Room has no bot"},
	{bot.ErrClosed, http.StatusServiceUnavailable, CodeStoreUnavailable, "Server is shutting down"},
	{identity.ErrIssueUnsupported, http.StatusNotImplemented, CodeNotSupported, "Identities are issued by the identity provider"},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mapping {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, m.msg}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
