package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fishingindustry/catalog/models"
)

// GeneralField is the error key for messages that belong to the whole form.
const GeneralField = "_form"

// ErrorResponse is the body of every failed request. Fields and Input are
// set when a form submission is rejected so the client can show the
// messages next to the values it sent.
type ErrorResponse struct {
	Error  string             `json:"error"`
	Fields models.FieldErrors `json:"fields,omitempty"`
	Input  any                `json:"input,omitempty"`
}

func OKResponse(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteJSON encodes data before touching the response, so a value that
// cannot be encoded becomes a 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return fmt.Errorf("encoding response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteFormError rejects a form submission, echoing the submitted values.
func WriteFormError(w http.ResponseWriter, status int, message string, fields models.FieldErrors, input any) {
	WriteJSON(w, status, ErrorResponse{
		Error:  message,
		Fields: fields,
		Input:  input,
	})
}

// FormFailure builds the field errors for a failure that is not tied to a field.
func FormFailure(message string) models.FieldErrors {
	return models.FieldErrors{GeneralField: {message}}
}

// WriteBodyError reports a request body that could not be parsed.
func WriteBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	WriteError(w, http.StatusBadRequest, "Invalid form body")
}
