package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/safar/marketplace/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"serialization", &pq.Error{Code: "40001"}, ErrorClassSerialization},
		{"deadlock", fmt.Errorf("wrapped: %w", &pq.Error{Code: "40P01"}), ErrorClassDeadlock},
		{"lock not available", &pq.Error{Code: "55P03"}, ErrorClassTransient},
		{"unique violation", &pq.Error{Code: "23505"}, ErrorClassPermanent},
		{"plain", errors.New("boom"), ErrorClassPermanent},
		{"coded", ErrInsufficientStock, ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestConstraintHelpers(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "users_email_key"})

	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
	assert.Equal(t, "users_email_key", ConstraintName(err))
	assert.True(t, IsCheckViolation(&pq.Error{Code: "23514"}))
}

func TestSentinelsAreCoded(t *testing.T) {
	assert.Equal(t, apperr.CodeBadRequest, apperr.CodeOf(fmt.Errorf("x: %w", ErrInsufficientStock)))
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(ErrOrderNotFound))
	assert.ErrorIs(t, fmt.Errorf("x: %w", ErrAlreadyProcessed), ErrAlreadyProcessed)
	assert.Equal(t, apperr.CodeBadRequest, apperr.CodeOf(ErrOrderNotCancellable))
}
