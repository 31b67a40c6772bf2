package service

import (
	"alcyxob/fitcoach/internal/dietparser"
	"errors"
	"fmt"
)

// Error categories. Every error a service returns on purpose wraps exactly
// one of these, so the transport layer can map it without knowing the details.
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = fmt.Errorf("%w: user with this email already exists", ErrConflict)
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidLevel         = fmt.Errorf("%w: level not allowed", ErrValidation)

	ErrUserNotFound            = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrTrainerCodeNotFound     = fmt.Errorf("%w: trainer code not found", ErrNotFound)
	ErrTrainerCodeTaken        = fmt.Errorf("%w: could not reserve a new trainer code, try again", ErrConflict)
	ErrTrainerCapacityExceeded = fmt.Errorf("%w: trainer has reached the free tier student limit", ErrConflict)
	ErrNotAStudent             = fmt.Errorf("%w: user is not a student", ErrValidation)
	ErrNotATrainer             = fmt.Errorf("%w: user is not a trainer", ErrValidation)
	ErrAlreadyLinked           = fmt.Errorf("%w: student already has a trainer", ErrConflict)
	ErrNoPendingRequest        = fmt.Errorf("%w: no pending link request from this student", ErrNotFound)
	ErrStudentNotLinked        = fmt.Errorf("%w: student is not linked to this trainer", ErrForbidden)
	ErrCapabilityDenied        = fmt.Errorf("%w: role does not allow this action", ErrForbidden)

	ErrSuggestionNotFound = fmt.Errorf("%w: suggestion not found", ErrNotFound)
	ErrNotSuggestionParty = fmt.Errorf("%w: only the student or trainer of a suggestion may answer it", ErrForbidden)
	ErrInvalidTransition  = fmt.Errorf("%w: status transition not allowed", ErrConflict)
	ErrEmptyContent       = fmt.Errorf("%w: content cannot be empty", ErrValidation)
	ErrInvalidType        = fmt.Errorf("%w: unknown type", ErrValidation)
	// ErrNoMealsRecognized wraps the parser error so callers can match either.
	ErrNoMealsRecognized = fmt.Errorf("%w: %w", ErrValidation, dietparser.ErrNoMealsRecognized)

	ErrTaskNotFound      = fmt.Errorf("%w: task not found", ErrNotFound)
	ErrTaskAccessDenied  = fmt.Errorf("%w: task belongs to another trainer", ErrForbidden)
	ErrScheduleInPast    = fmt.Errorf("%w: scheduled date must be in the future", ErrValidation)
	ErrNotScheduled      = fmt.Errorf("%w: task has no scheduled date", ErrConflict)
	ErrStudentHasNoCoach = fmt.Errorf("%w: student has no active trainer", ErrConflict)

	ErrWorkoutNotFound = fmt.Errorf("%w: workout not found", ErrNotFound)
	ErrDietNotFound    = fmt.Errorf("%w: diet not found", ErrNotFound)
	ErrPlanAccess      = fmt.Errorf("%w: plan belongs to another user", ErrForbidden)

	ErrMessagingNotAllowed = fmt.Errorf("%w: users are not linked", ErrForbidden)
	ErrPostNotFound        = fmt.Errorf("%w: post not found", ErrNotFound)
	ErrPostAccessDenied    = fmt.Errorf("%w: only the author or an admin may delete a post", ErrForbidden)

	ErrUnsupportedMediaType = fmt.Errorf("%w: only image and video uploads are supported", ErrValidation)
	ErrUploadNotFound       = fmt.Errorf("%w: upload not found", ErrNotFound)
	ErrUploadAccessDenied   = fmt.Errorf("%w: upload belongs to another user", ErrForbidden)
	ErrInvalidObjectKey     = fmt.Errorf("%w: object key does not belong to caller", ErrForbidden)
)
