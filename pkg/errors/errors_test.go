package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("record store write failed")
	wrapped := Wrap(originalErr, CodeStorage, "storage error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeStorage {
		t.Errorf("expected code %s, got %s", CodeStorage, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeStorage,
				Message: "append failed",
				Err:     errors.New("disk full"),
			},
			expected: "STORAGE_ERROR: append failed (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestSeatConflict(t *testing.T) {
	err := SeatConflict([]int{4, 7})

	if err.Code != CodeSeatConflict {
		t.Errorf("expected code %s, got %s", CodeSeatConflict, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	seats, ok := err.Details["seats"].([]int)
	if !ok {
		t.Fatalf("expected seats detail, got %v", err.Details["seats"])
	}
	if len(seats) != 2 || seats[0] != 4 || seats[1] != 7 {
		t.Errorf("expected seats [4 7], got %v", seats)
	}
}

func TestStorage(t *testing.T) {
	cause := errors.New("csv write failed")
	err := Storage("Failed to append booking records", cause)

	if err.Code != CodeStorage {
		t.Errorf("expected code %s, got %s", CodeStorage, err.Code)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, err.HTTPStatus)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected Storage error to wrap its cause")
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "a1b2c3d4")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Details["id"] != "a1b2c3d4" {
		t.Errorf("expected id detail 'a1b2c3d4', got %v", err.Details["id"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("bus is being booked")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("AsAppError should return the same *AppError unchanged")
	}

	plain := errors.New("something broke")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected plain errors to convert to %s, got %s", CodeInternal, converted.Code)
	}
	if !errors.Is(converted, plain) {
		t.Errorf("expected converted error to wrap the original")
	}
}
