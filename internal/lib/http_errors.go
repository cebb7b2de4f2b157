package lib

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusClientClosedRequest is reported when the caller went away.
const StatusClientClosedRequest = 499

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP maps err through HandleError to an HTTP status and a response body
// that never leaks internal details.
func ToHTTP(err error) (int, ErrorResponse) {
	st, _ := status.FromError(HandleError(err))
	if err == nil {
		st = status.New(codes.Internal, "")
	}

	httpStatus, code := fromCode(st.Code())
	message := st.Message()
	if httpStatus == http.StatusInternalServerError || message == "" {
		message = "internal error"
	}

	return httpStatus, ErrorResponse{Error: APIError{Code: code, Message: message}}
}

func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpStatus, response := ToHTTP(err)
	response.Error.RequestID = middleware.GetReqID(r.Context())
	WriteJSON(w, httpStatus, response)
}

func WriteJSON(w http.ResponseWriter, httpStatus int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = sonic.ConfigStd.NewEncoder(w).Encode(value)
}

func fromCode(c codes.Code) (int, string) {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "invalid_argument"
	case codes.NotFound:
		return http.StatusNotFound, "not_found"
	case codes.AlreadyExists:
		return http.StatusConflict, "already_exists"
	case codes.FailedPrecondition:
		return http.StatusConflict, "failed_precondition"
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "unauthenticated"
	case codes.PermissionDenied:
		return http.StatusForbidden, "permission_denied"
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, "resource_exhausted"
	case codes.Canceled:
		return StatusClientClosedRequest, "canceled"
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout, "deadline_exceeded"
	case codes.Unavailable:
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
