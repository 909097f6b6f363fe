package domain

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestMeta(t *testing.T) {
	_, ok := RequestMetaFrom(context.Background())
	assert.False(t, ok)

	meta := RequestMeta{RequestID: "req-1", IP: "10.0.0.1", UserAgent: "curl/8"}
	got, ok := RequestMetaFrom(WithRequestMeta(context.Background(), meta))
	assert.True(t, ok)
	assert.Equal(t, meta, got)
}

func TestVerificationReport_Passed(t *testing.T) {
	assert.True(t, (&VerificationReport{Total: 2, Valid: 2}).Passed())
	assert.False(t, (&VerificationReport{Total: 2, Valid: 1, Invalid: 1, InvalidIDs: []uuid.UUID{uuid.New()}}).Passed())
	assert.False(t, (&VerificationReport{Total: 1, Unsigned: 1}).Passed())
}
