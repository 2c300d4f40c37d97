package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Codes for request shape problems, everything else comes from apperrors
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeDecodingFailed   = "DECODING_FAILED"
	CodeInternalError    = "INTERNAL_ERROR"
)

var validate = newValidator()

type Struct any

// ErrorResponse is the single rejection envelope of the whole API:
// a machine readable code plus a human readable message, nothing internal
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusOK)
}

func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	jsonWithStatus(w, data, code)
}

// Error renders the rejection envelope with the given code and status
func Error(w http.ResponseWriter, code string, message string, status int) {
	jsonWithStatus(w, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}, status)
}

// InternalError hides the actual error from the client
func InternalError(w http.ResponseWriter) {
	Error(w, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

// DecodeError renders a 400 with a hint at what failed to parse
func DecodeError(w http.ResponseWriter, err error) {
	message := "Failed to parse JSON request body"

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		message = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	}

	Error(w, CodeDecodingFailed, message, http.StatusBadRequest)
}

// ValidationErrors renders a 400 with a per-field breakdown
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make(map[string]string, len(errs))

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "oneof":
			message = fmt.Sprintf("Value must be one of: %s", fieldError.Param())
		default:
			message = "Invalid value"
		}

		fields[fieldError.Field()] = message
	}

	jsonWithStatus(w, ErrorResponse{
		Error: ErrorDetail{
			Code:    CodeValidationFailed,
			Message: "Request validation failed",
			Fields:  fields,
		},
	}, http.StatusBadRequest)
}

// Decode parses the body into T without writing anything to the response.
// An empty body yields the zero value and no error: the auth endpoints
// treat an empty request as bad credentials, not as a parse failure.
func Decode[T Struct](r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if errors.Is(err, io.EOF) {
		return value, nil
	}

	return value, err
}

// BindAndValidate decodes JSON request body into type T and validates it using
// struct tags. Writes the appropriate error response on failure, so callers
// only need to bail out.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
