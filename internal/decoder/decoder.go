// Package decoder turns analyzer notification payloads into classification
// results. Malformed and intermediate frames are dropped with a named Outcome;
// decoding never returns an error.
package decoder

import (
	"encoding/json"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Outcome names what happened to a frame.
type Outcome int

const (
	Accepted            Outcome = iota
	SkippedMalformed            // transport encoding, UTF-8 or JSON failure
	SkippedIntermediate         // well-formed status frame without a result
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case SkippedMalformed:
		return "skipped_malformed"
	case SkippedIntermediate:
		return "skipped_intermediate"
	default:
		return "unknown"
	}
}

const statusComplete = "complete"

// Feature is one named stroke metric reported by the classifier.
type Feature struct {
	Value       float64 `json:"value"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// Result is an accepted classification. Confidence is in [0,1].
type Result struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	ObservedAt time.Time          `json:"observed_at"`
	Complete   bool               `json:"complete"`
	Features   map[string]Feature `json:"features,omitempty"`
}

// frame mirrors the JSON emitted by the firmware. prediction must be a string;
// any other JSON type fails decoding and the frame is malformed.
type frame struct {
	Prediction   string             `json:"prediction"`
	OverallScore *float64           `json:"overall_score"`
	Status       string             `json:"status"`
	Timestamp    *float64           `json:"timestamp"`
	Features     map[string]Feature `json:"features"`
}

// Decoder decodes payloads with a fixed transport codec.
type Decoder struct {
	codec  Codec
	now    func() time.Time
	logger *logrus.Logger
}

// New creates a Decoder. A nil codec means base64.
func New(codec Codec, logger *logrus.Logger) *Decoder {
	if codec == nil {
		codec = Base64Codec{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Decoder{codec: codec, now: time.Now, logger: logger}
}

// Codec returns the transport codec in use.
func (d *Decoder) Codec() Codec { return d.codec }

// Decode runs payload through codec → UTF-8 → JSON. The Result is only
// meaningful when the outcome is Accepted.
func (d *Decoder) Decode(payload []byte) (Result, Outcome) {
	text, err := d.codec.Decode(payload)
	if err != nil {
		d.logger.WithError(err).Debug("Dropping frame with bad transport encoding")
		return Result{}, SkippedMalformed
	}
	if !utf8.Valid(text) {
		d.logger.Debug("Dropping frame with invalid UTF-8")
		return Result{}, SkippedMalformed
	}

	var f frame
	if err := json.Unmarshal(text, &f); err != nil {
		d.logger.WithError(err).Debug("Dropping frame with invalid JSON")
		return Result{}, SkippedMalformed
	}

	label := strings.TrimSpace(f.Prediction)
	complete := f.Status == statusComplete
	if !complete && label == "" {
		d.logger.WithField("status", f.Status).Debug("Dropping intermediate frame")
		return Result{}, SkippedIntermediate
	}

	res := Result{
		Label:      label,
		Confidence: normalizeScore(f.OverallScore),
		ObservedAt: d.observedAt(f.Timestamp),
		Complete:   complete,
		Features:   f.Features,
	}
	d.logger.WithFields(logrus.Fields{
		"label":      res.Label,
		"confidence": res.Confidence,
		"complete":   res.Complete,
	}).Debug("Accepted classification result")
	return res, Accepted
}

// normalizeScore maps the firmware's 0..100 score to [0,1].
func normalizeScore(score *float64) float64 {
	if score == nil || math.IsNaN(*score) {
		return 0
	}
	return math.Max(0, math.Min(1, *score/100))
}

// observedAt reads an epoch timestamp in milliseconds; values below 1e12 are
// taken as seconds. Missing or non-positive values mean "now".
func (d *Decoder) observedAt(ts *float64) time.Time {
	if ts == nil || *ts <= 0 || math.IsNaN(*ts) || math.IsInf(*ts, 0) {
		return d.now()
	}
	if *ts < 1e12 {
		return time.Unix(0, int64(*ts*float64(time.Second)))
	}
	return time.UnixMilli(int64(*ts))
}
