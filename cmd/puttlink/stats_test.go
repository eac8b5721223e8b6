package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srg/puttlink/internal/history"
)

type StatsTestSuite struct {
	CommandTestSuite
}

func (s *StatsTestSuite) TestEmptyStats() {
	out, err := s.ExecuteCommand("stats")
	s.Require().NoError(err)
	s.Contains(out, "Total strokes:   0")
	s.Contains(out, "Mean confidence: 0%")
	s.Contains(out, "Start practicing to see your progress!")
	s.NotContains(out, "LABEL")
}

func (s *StatsTestSuite) TestTable() {
	// GOAL: Verify stats shows per-label shares and the progress message
	//
	// TEST SCENARIO: 2 Good + 1 Poor + 1 Excellent, mean 0.7 → 50% Good, "Good progress"

	s.SeedHistory(
		history.Record{Label: "Good", Confidence: 0.7},
		history.Record{Label: "Poor", Confidence: 0.4},
		history.Record{Label: "Good", Confidence: 0.8},
		history.Record{Label: "Excellent", Confidence: 0.9},
	)

	out, err := s.ExecuteCommand("stats")
	s.Require().NoError(err)

	s.Contains(out, "Total strokes:   4")
	s.Contains(out, "Mean confidence: 70%")
	s.Contains(out, "50.0%")
	s.Contains(out, "25.0%")
	s.Contains(out, "Most common: Good (2)")
	s.Contains(out, "Good progress! Focus on consistency.")
}

func (s *StatsTestSuite) TestJSON() {
	s.SeedHistory(
		history.Record{Label: "Excellent", Confidence: 0.9},
		history.Record{Label: "Excellent", Confidence: 0.85},
	)

	out, err := s.ExecuteCommand("stats", "--format", "json")
	s.Require().NoError(err)

	var report statsReport
	s.Require().NoError(json.Unmarshal([]byte(out), &report), "output MUST be valid JSON: %s", out)
	s.Equal(2, report.Total)
	s.InDelta(0.875, report.MeanConfidence, 1e-9)
	s.Equal([]labelShare{{Label: "Excellent", Count: 2, Percent: 100}}, report.Labels)
	s.Equal([]history.LabelCount{{Label: "Excellent", Count: 2}}, report.TopLabels)
	s.Equal("Excellent form! Keep it up!", report.Message)
}

func (s *StatsTestSuite) TestInvalidFormat() {
	_, err := s.ExecuteCommand("stats", "--format", "yaml")
	s.ErrorContains(err, "invalid format")
}

func TestStatsTestSuite(t *testing.T) {
	suite.Run(t, new(StatsTestSuite))
}
