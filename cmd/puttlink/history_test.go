package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srg/puttlink/internal/history"
)

type HistoryTestSuite struct {
	CommandTestSuite
}

func (s *HistoryTestSuite) seed() {
	s.SeedHistory(
		history.Record{Label: "Poor", Confidence: 0.31},
		history.Record{Label: "Good", Confidence: 0.74},
		history.Record{Label: "Excellent", Confidence: 0.93},
	)
}

func (s *HistoryTestSuite) TestEmptyHistory() {
	out, err := s.ExecuteCommand("history")
	s.Require().NoError(err)
	s.Contains(out, "No strokes recorded yet.")
}

func (s *HistoryTestSuite) TestLimitShowsNewestFirst() {
	// GOAL: Verify history lists newest strokes first and reports truncation
	//
	// TEST SCENARIO: 3 strokes, --limit 2 → Excellent and Good shown, Poor hidden

	s.seed()

	out, err := s.ExecuteCommand("history", "--limit", "2")
	s.Require().NoError(err)

	s.Contains(out, "TIME")
	s.Contains(out, "Excellent")
	s.Contains(out, "93%")
	s.Contains(out, "Good")
	s.NotContains(out, "Poor")
	s.Less(strings.Index(out, "Excellent"), strings.Index(out, "Good"), "newest stroke MUST come first")
	s.Contains(out, "Showing 2 of 3 strokes.")
}

func (s *HistoryTestSuite) TestZeroLimitShowsAll() {
	s.seed()

	out, err := s.ExecuteCommand("history", "-n", "0")
	s.Require().NoError(err)
	s.Contains(out, "Poor")
	s.NotContains(out, "Showing")
}

func (s *HistoryTestSuite) TestJSONOutput() {
	s.seed()

	out, err := s.ExecuteCommand("history", "--format", "json")
	s.Require().NoError(err)

	var records []map[string]any
	s.Require().NoError(json.Unmarshal([]byte(out), &records), "output MUST be valid JSON: %s", out)
	s.Require().Len(records, 3)
	s.Equal("Excellent", records[0]["label"])
	s.Equal(0.93, records[0]["confidence"])
	s.NotEmpty(records[0]["id"])
	s.NotEmpty(records[0]["timestamp"])
}

func (s *HistoryTestSuite) TestInvalidFlags() {
	_, err := s.ExecuteCommand("history", "--format", "csv")
	s.ErrorContains(err, "invalid format")

	resetCommandFlags(rootCmd)
	_, err = s.ExecuteCommand("history", "--limit", "-1")
	s.ErrorContains(err, "must not be negative")
}

func (s *HistoryTestSuite) TestClear() {
	s.seed()

	out, err := s.ExecuteCommand("history", "clear")
	s.Require().NoError(err)
	s.Contains(out, "Cleared 3 stroke(s).")
	s.Zero(s.OpenHistory().Total(), "cleared history MUST stay empty after reopening")
}

func TestHistoryTestSuite(t *testing.T) {
	suite.Run(t, new(HistoryTestSuite))
}
