package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recipe_backend/internal/shared/apperr"
)

func TestParseIDList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    []uint
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", "3", []uint{3}, false},
		{"multiple with spaces", "1, 2 ,3", []uint{1, 2, 3}, false},
		{"not a number", "1,abc", nil, true},
		{"trailing comma", "1,", nil, true},
		{"negative", "-1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseIDList("tags", tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Contains(t, apperr.Details(err), "tags")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAssignedOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"0", false, false},
		{"1", true, false},
		{"2", true, false},
		{"true", true, false},
		{"False", false, false},
		{"yes", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			got, err := parseAssignedOnly(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
