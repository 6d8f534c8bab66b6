// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrMarketClosed      = errors.New("market is closed")
	ErrInsufficientCash  = errors.New("insufficient cash")
	ErrPositionNotFound  = errors.New("position not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDataNotFound      = errors.New("data not found")
	ErrDatabaseError     = errors.New("database error")
	ErrSchedulerStopped  = errors.New("scheduler is stopped")
	ErrSchedulerRunning  = errors.New("scheduler already running")
)

// SimulationError represents an error from the market simulator.
type SimulationError struct {
	Symbol  string
	Op      string
	Message string
	Err     error
}

func (e *SimulationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("simulation error [%s] %s: %s: %v", e.Symbol, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("simulation error [%s] %s: %s", e.Symbol, e.Op, e.Message)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// NewSimulationError creates a new SimulationError.
func NewSimulationError(symbol, op, message string, err error) *SimulationError {
	return &SimulationError{Symbol: symbol, Op: op, Message: message, Err: err}
}

// AnalysisError represents an error from an analysis model or indicator.
type AnalysisError struct {
	Model     string
	Operation string
	Err       error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis error [%s] %s: %v", e.Model, e.Operation, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError creates a new AnalysisError.
func NewAnalysisError(model, operation string, err error) *AnalysisError {
	return &AnalysisError{Model: model, Operation: operation, Err: err}
}

// StoreError represents a persistence error.
type StoreError struct {
	Entity  string
	Op      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s] %s: %s: %v", e.Entity, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s: %s", e.Entity, e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, op, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Op: op, Message: message, Err: err}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ScheduleError represents a report scheduling error.
type ScheduleError struct {
	Job     string
	Message string
	Err     error
}

func (e *ScheduleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schedule error [%s]: %s: %v", e.Job, e.Message, e.Err)
	}
	return fmt.Sprintf("schedule error [%s]: %s", e.Job, e.Message)
}

func (e *ScheduleError) Unwrap() error {
	return e.Err
}

// NewScheduleError creates a new ScheduleError.
func NewScheduleError(job, message string, err error) *ScheduleError {
	return &ScheduleError{Job: job, Message: message, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
