package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
)

type sampleInput struct {
	Name   string     `json:"name" validate:"required"`
	Email  string     `json:"email" validate:"required,email"`
	Budget *float64   `json:"budget" validate:"omitempty,min=0"`
	Clicks *int       `json:"clicks" validate:"omitempty,min=0"`
	Start  *time.Time `json:"startDate"`
	Date   time.Time  `json:"date" validate:"required"`
}

func fieldsOf(t *testing.T, err error) map[string]appErrors.FieldError {
	t.Helper()
	var verr *appErrors.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	out := map[string]appErrors.FieldError{}
	for _, f := range verr.Fields {
		out[f.Field] = f
	}
	return out
}

func TestDecodeValidInput(t *testing.T) {
	var in sampleInput
	err := Decode([]byte(`{"name":"Q1","email":"a@b.co","budget":12.5,"clicks":3,"date":"2024-03-01"}`), &in)
	require.NoError(t, err)

	assert.Equal(t, "Q1", in.Name)
	assert.Equal(t, 12.5, *in.Budget)
	assert.Equal(t, 3, *in.Clicks)
	assert.Nil(t, in.Start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), in.Date)
}

func TestDecodeReportsEveryOffendingField(t *testing.T) {
	var in sampleInput
	err := Decode([]byte(`{"name":42,"email":"nope","budget":"lots","clicks":1.5,"startDate":"yesterday"}`), &in)

	fields := fieldsOf(t, err)
	assert.Equal(t, TypeString, fields["name"].Expected)
	assert.Equal(t, TypeString, fields["email"].Expected)
	assert.Equal(t, TypeNumber, fields["budget"].Expected)
	assert.Equal(t, TypeInteger, fields["clicks"].Expected)
	assert.Equal(t, TypeDate, fields["startDate"].Expected)
	assert.Equal(t, TypeDate, fields["date"].Expected)
	assert.Equal(t, "is required", fields["date"].Message)
	assert.Len(t, fields, 6)
}

func TestDecodeRejectsNegativeCounters(t *testing.T) {
	var in sampleInput
	err := Decode([]byte(`{"name":"x","email":"a@b.co","clicks":-1,"date":"2024-03-01T00:00:00Z"}`), &in)

	fields := fieldsOf(t, err)
	assert.Equal(t, "must be at least 0", fields["clicks"].Message)
}

func TestDecodeRejectsNonObject(t *testing.T) {
	var in sampleInput
	fields := fieldsOf(t, Decode([]byte(`[1,2]`), &in))
	assert.Equal(t, TypeObject, fields["input"].Expected)
}

func TestDecodeTreatsNullAsAbsent(t *testing.T) {
	var in struct {
		ID     string   `json:"id" validate:"required"`
		Budget *float64 `json:"budget"`
	}
	require.NoError(t, Decode([]byte(`{"id":"c1","budget":null}`), &in))
	assert.Nil(t, in.Budget)
}

func TestDecodeEmptyInput(t *testing.T) {
	var in struct{}
	assert.NoError(t, Decode(nil, &in))
}

func TestDecodeAcceptsIntegralExponent(t *testing.T) {
	var in struct {
		Clicks *int `json:"clicks"`
	}
	require.NoError(t, Decode([]byte(`{"clicks":1e2}`), &in))
	require.NotNil(t, in.Clicks)
	assert.Equal(t, 100, *in.Clicks)

	fields := fieldsOf(t, Decode([]byte(`{"clicks":1.5e0}`), &in))
	assert.Equal(t, TypeInteger, fields["clicks"].Expected)
}

func TestDecodeEnforcesMaxRule(t *testing.T) {
	var in struct {
		Clicks *int `json:"clicks" validate:"omitempty,min=0,max=2147483647"`
	}
	fields := fieldsOf(t, Decode([]byte(`{"clicks":3000000000}`), &in))
	assert.Equal(t, "must be at most 2147483647", fields["clicks"].Message)
	assert.Equal(t, TypeInteger, fields["clicks"].Expected)
}
