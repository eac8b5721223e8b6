package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "16-bit UUID", input: "2902", expected: "2902"},
		{name: "16-bit UUID with 0x prefix", input: "0x2902", expected: "2902"},
		{name: "16-bit UUID with 0X prefix", input: "0X2902", expected: "2902"},
		{name: "SIG base UUID with dashes", input: "0000180d-0000-1000-8000-00805f9b34fb", expected: "180d"},
		{name: "SIG base UUID uppercase", input: "00002902-0000-1000-8000-00805F9B34FB", expected: "2902"},
		{name: "SIG base UUID without dashes", input: "0000290200001000800000805f9b34fb", expected: "2902"},
		{name: "analyzer service UUID", input: AnalyzerServiceUUID, expected: "19b10000e8f2537e4f6cd104768a1214"},
		{name: "custom UUID with SIG-like suffix", input: "AA002902-0000-1000-8000-00805f9b34fb", expected: "aa00290200001000800000805f9b34fb"},
		{name: "surrounding whitespace", input: "  180F ", expected: "180f"},
		{name: "empty string", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUUID(tt.input))
		})
	}
}

func TestEqualUUID(t *testing.T) {
	assert.True(t, EqualUUID(DataCharUUID, "19b10002e8f2537e4f6cd104768a1214"))
	assert.True(t, EqualUUID("180d", "0000180D-0000-1000-8000-00805f9b34fb"))
	assert.False(t, EqualUUID(DataCharUUID, ControlCharUUID))
}

func TestValidateUUID(t *testing.T) {
	got, err := ValidateUUID(AnalyzerServiceUUID, "0x180F")
	require.NoError(t, err)
	assert.Equal(t, []string{"19b10000e8f2537e4f6cd104768a1214", "180f"}, got)

	_, err = ValidateUUID()
	assert.Error(t, err, "MUST reject an empty argument list")

	_, err = ValidateUUID("180F", "")
	assert.ErrorContains(t, err, "index 1")

	_, err = ValidateUUID("not-a-uuid")
	assert.ErrorContains(t, err, "invalid UUID format")
}
