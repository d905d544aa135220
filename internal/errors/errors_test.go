package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "test error")
	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "test error" {
		t.Errorf("expected message 'test error', got %s", err.Message)
	}
	if err.Err != nil {
		t.Errorf("expected nil wrapped error, got %v", err.Err)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	err := Wrap(originalErr, CodeExternalService, "request failed")

	if err.Code != CodeExternalService {
		t.Errorf("expected code %s, got %s", CodeExternalService, err.Code)
	}
	if err.Message != "request failed" {
		t.Errorf("expected message 'request failed', got %s", err.Message)
	}
	if err.Err != originalErr {
		t.Errorf("expected wrapped error to be original error")
	}
}

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			err:      New(CodeValidation, "validation failed"),
			expected: "[VALIDATION_ERROR] validation failed",
		},
		{
			name:     "error with wrapped error",
			err:      Wrap(errors.New("inner"), CodeExternalService, "backend error"),
			expected: "[EXTERNAL_SERVICE_ERROR] backend error: inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original")
	err := Wrap(originalErr, CodeExternalService, "wrapped")

	if unwrapped := err.Unwrap(); unwrapped != originalErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
}

func TestAppErrorWithContext(t *testing.T) {
	err := New(CodeValidation, "test").
		WithContext("field", "title").
		WithContext("value", "  ")

	if len(err.Context) != 2 {
		t.Errorf("expected 2 context items, got %d", len(err.Context))
	}
	if err.Context["field"] != "title" {
		t.Errorf("expected field context 'title', got %v", err.Context["field"])
	}
}

func TestFieldValidationError(t *testing.T) {
	err := FieldValidationError("director", "Please fill out the director field.")
	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if got := Field(err); got != "director" {
		t.Errorf("expected field 'director', got %q", got)
	}
	if got := Field(fmt.Errorf("submit: %w", err)); got != "director" {
		t.Errorf("expected field through wrapping, got %q", got)
	}
	if got := Field(errors.New("plain")); got != "" {
		t.Errorf("expected empty field for plain error, got %q", got)
	}
}

func TestExternalServiceError(t *testing.T) {
	originalErr := errors.New("timeout")
	err := ExternalServiceError("movieapi", "failed to list movies", originalErr)
	if err.Code != CodeExternalService {
		t.Errorf("expected code %s, got %s", CodeExternalService, err.Code)
	}
	if err.Context["service"] != "movieapi" {
		t.Errorf("expected service context 'movieapi', got %v", err.Context["service"])
	}
}

func TestExternalServiceError_KeepsNotFound(t *testing.T) {
	err := ExternalServiceError("movieapi", "failed to get movie", NotFoundError("movie", "7"))
	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}
}

func TestConfigError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		originalErr := errors.New("file not found")
		err := ConfigError("config load failed", originalErr)
		if err.Code != CodeConfig {
			t.Errorf("expected code %s, got %s", CodeConfig, err.Code)
		}
		if err.Err != originalErr {
			t.Errorf("expected wrapped error to be original error")
		}
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := ConfigError("missing required field", nil)
		if err.Code != CodeConfig {
			t.Errorf("expected code %s, got %s", CodeConfig, err.Code)
		}
		if err.Err != nil {
			t.Errorf("expected nil wrapped error, got %v", err.Err)
		}
	})
}

func TestBusyError(t *testing.T) {
	err := BusyError("submit")
	if err.Code != CodeBusy {
		t.Errorf("expected code %s, got %s", CodeBusy, err.Code)
	}
	if err.Context["action"] != "submit" {
		t.Errorf("expected action context 'submit', got %v", err.Context["action"])
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"not found", NotFoundError("movie", "1"), true},
		{"wrapped not found", Wrap(NotFoundError("movie", "1"), CodeExternalService, "lookup"), true},
		{"external error", Wrap(errors.New("boom"), CodeExternalService, "lookup"), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(ValidationError("bad")) {
		t.Error("expected validation error")
	}
	if !IsValidationError(New(CodeInvalidInput, "bad")) {
		t.Error("expected invalid input to count as validation error")
	}
	if IsValidationError(errors.New("bad")) {
		t.Error("expected plain error not to be a validation error")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "app error",
			err:      ValidationError("test"),
			expected: CodeValidation,
		},
		{
			name:     "wrapped app error",
			err:      fmt.Errorf("outer: %w", ExternalServiceError("movieapi", "test", errors.New("inner"))),
			expected: CodeExternalService,
		},
		{
			name:     "standard error",
			err:      errors.New("standard"),
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}
