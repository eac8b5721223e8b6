package decoder

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) []byte {
	return []byte(base64.StdEncoding.EncodeToString([]byte(s)))
}

func newTestDecoder(codec Codec) *Decoder {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	d := New(codec, logger)
	d.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return d
}

func TestDecode_AcceptsPrediction(t *testing.T) {
	// GOAL: Verify a prediction frame decodes to an accepted result with a normalised confidence
	//
	// TEST SCENARIO: {"prediction":"Good","overall_score":85} → Accepted, confidence ≈ 0.85

	d := newTestDecoder(nil)
	res, outcome := d.Decode(b64(`{"prediction":"Good","overall_score":85}`))

	require.Equal(t, Accepted, outcome)
	assert.Equal(t, "Good", res.Label)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
	assert.False(t, res.Complete)
	assert.Equal(t, d.now(), res.ObservedAt, "missing timestamp MUST default to receive time")
}

func TestDecode_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		outcome Outcome
	}{
		{name: "complete status without prediction", payload: b64(`{"status":"complete"}`), outcome: Accepted},
		{name: "intermediate status", payload: b64(`{"status":"intermediate"}`), outcome: SkippedIntermediate},
		{name: "empty object", payload: b64(`{}`), outcome: SkippedIntermediate},
		{name: "blank prediction", payload: b64(`{"prediction":"  "}`), outcome: SkippedIntermediate},
		{name: "not base64", payload: []byte("%%%not-base64%%%"), outcome: SkippedMalformed},
		{name: "base64 of garbage", payload: b64(`{"prediction":`), outcome: SkippedMalformed},
		{name: "invalid utf-8", payload: []byte(base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})), outcome: SkippedMalformed},
		{name: "json array", payload: b64(`[1,2,3]`), outcome: SkippedMalformed},
		{name: "numeric prediction", payload: b64(`{"prediction":3,"status":"complete"}`), outcome: SkippedMalformed},
		{name: "boolean prediction", payload: b64(`{"prediction":true}`), outcome: SkippedMalformed},
		{name: "empty payload", payload: nil, outcome: SkippedMalformed},
	}

	d := newTestDecoder(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, outcome := d.Decode(tt.payload)
			assert.Equal(t, tt.outcome, outcome, "outcome MUST be %s", tt.outcome)
		})
	}
}

func TestDecode_ScoreNormalisation(t *testing.T) {
	tests := []struct {
		frame    string
		expected float64
	}{
		{`{"prediction":"Poor"}`, 0},
		{`{"prediction":"Excellent","overall_score":100}`, 1},
		{`{"prediction":"Excellent","overall_score":140}`, 1},
		{`{"prediction":"Poor","overall_score":-5}`, 0},
		{`{"prediction":"Needs Work","overall_score":42.5}`, 0.425},
	}

	d := newTestDecoder(nil)
	for _, tt := range tests {
		res, outcome := d.Decode(b64(tt.frame))
		require.Equal(t, Accepted, outcome, tt.frame)
		assert.InDelta(t, tt.expected, res.Confidence, 1e-9, tt.frame)
	}
}

func TestDecode_TimestampAndFeatures(t *testing.T) {
	d := newTestDecoder(RawCodec{})

	res, outcome := d.Decode([]byte(`{
		"prediction": "Good",
		"overall_score": 77,
		"status": "complete",
		"timestamp": 1760778000000,
		"features": {
			"tempo": {"value": 2.1, "score": 80, "description": "backswing to impact ratio"},
			"face_angle": {"value": -0.4, "score": 91, "description": "degrees open at impact"}
		}
	}`))

	require.Equal(t, Accepted, outcome)
	assert.True(t, res.Complete)
	assert.Equal(t, time.UnixMilli(1760778000000), res.ObservedAt)
	require.Len(t, res.Features, 2)
	assert.Equal(t, Feature{Value: 2.1, Score: 80, Description: "backswing to impact ratio"}, res.Features["tempo"])

	res, _ = d.Decode([]byte(`{"prediction":"Good","timestamp":1760778000}`))
	assert.Equal(t, time.Unix(1760778000, 0), res.ObservedAt, "second-resolution timestamps MUST be accepted")
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "base64", c.Name())

	c, err = CodecByName("RAW")
	require.NoError(t, err)
	assert.Equal(t, "raw", c.Name())

	_, err = CodecByName("hex")
	assert.ErrorContains(t, err, "unknown transport encoding")
}

func TestBase64Codec_RoundTripsCommands(t *testing.T) {
	c := Base64Codec{}
	assert.Equal(t, []byte("U1RBUlQ="), c.Encode("START"))

	out, err := c.Decode([]byte(" U1RPUA==\n"))
	require.NoError(t, err)
	assert.Equal(t, "STOP", string(out))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "skipped_malformed", SkippedMalformed.String())
	assert.Equal(t, "skipped_intermediate", SkippedIntermediate.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
