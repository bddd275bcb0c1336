package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_RefValidation(t *testing.T) {
	InitValidator()
	v := GetValidator()

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"plain id", "transit", false},
		{"with separators", "car-9_v2.1:a", false},
		{"empty is left to required", "", false},
		{"space", "bad id", true},
		{"leading dash", "-walk", true},
		{"newline", "walk\n", true},
		{"unicode", "wälk", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateVar(tt.ref, "ref")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_RequestStructs(t *testing.T) {
	v := GetValidator()

	assert.NoError(t, v.ValidateStruct(CompleteMissionRequest{MissionID: "walk"}))
	assert.Error(t, v.ValidateStruct(CompleteMissionRequest{}))
	assert.Error(t, v.ValidateStruct(CompleteMissionRequest{MissionID: strings.Repeat("a", 65)}))

	assert.NoError(t, v.ValidateStruct(ComplianceRequest{ContextID: "car-1", Co2ImpactKg: 0}))
	assert.Error(t, v.ValidateStruct(ComplianceRequest{ContextID: "car-1", Co2ImpactKg: -0.1}))
	assert.Error(t, v.ValidateStruct(PollutionReportRequest{ReportID: "r1", Co2ImpactKg: 10001}))
}

func TestFormatValidationError(t *testing.T) {
	v := GetValidator()

	err := v.ValidateStruct(ComplianceRequest{Co2ImpactKg: -5})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "This field is required", fields["context_id"])
	assert.Equal(t, "Must be greater than or equal to 0", fields["co2_impact_kg"])

	assert.Nil(t, FormatValidationError(nil))
	assert.Equal(t, map[string]string{"error": "Invalid request format"}, FormatValidationError(assert.AnError))
}
