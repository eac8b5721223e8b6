package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srg/puttlink/internal/device"
	"github.com/srg/puttlink/internal/testutils"
)

type ScanTestSuite struct {
	CommandTestSuite
}

func (s *ScanTestSuite) SetupTest() {
	s.WithPeripheral().
		WithAddress(TestDeviceAddress1).
		WithAdvertisements(
			testutils.CreateMockAdvertisement("PuttAnalyzer", TestDeviceAddress1, -50).Build(),
			testutils.CreateMockAdvertisement("", TestDeviceAddress2, -72).Build(),
			testutils.CreateMockAdvertisement("PuttAnalyzer", TestDeviceAddress1, -48).Build(),
			testutils.CreateMockAdvertisement("Speaker", "00:00:00:00:00:99", -20).WithServices("180D").Build(),
		)
	s.CommandTestSuite.SetupTest()
}

func (s *ScanTestSuite) TestScanTable() {
	// GOAL: Verify scan lists each analyzer once and hides other peripherals
	//
	// TEST SCENARIO: 4 advertisements (1 duplicate, 1 foreign) → table with 2 rows

	out, err := s.ExecuteCommand("scan", "--duration", "50ms")
	s.Require().NoError(err)

	s.Contains(out, "ID")
	s.Contains(out, TestDeviceAddress1)
	s.Contains(out, "PuttAnalyzer")
	s.Contains(out, "-48 dBm", "the latest RSSI MUST be shown")
	s.Contains(out, TestDeviceAddress2)
	s.Contains(out, "Unknown Device")
	s.NotContains(out, "Speaker")
	s.Contains(out, "Found 2 analyzer(s).")
}

func (s *ScanTestSuite) TestScanJSON() {
	out, err := s.ExecuteCommand("scan", "--duration", "50ms", "--format", "json")
	s.Require().NoError(err)

	var devices []device.PeripheralDevice
	s.Require().NoError(json.Unmarshal([]byte(out), &devices), "output MUST be valid JSON: %s", out)
	s.Require().Len(devices, 2)
	s.Equal(TestDeviceAddress1, devices[0].ID)
	s.False(devices[0].Connected)
}

func (s *ScanTestSuite) TestScanInvalidFormat() {
	_, err := s.ExecuteCommand("scan", "--format", "xml")
	s.ErrorContains(err, "invalid format")
}

func TestScanTestSuite(t *testing.T) {
	suite.Run(t, new(ScanTestSuite))
}

type EmptyScanTestSuite struct {
	CommandTestSuite
}

func (s *EmptyScanTestSuite) TestNoAnalyzers() {
	out, err := s.ExecuteCommand("scan", "--duration", "20ms")
	s.Require().NoError(err)
	s.Contains(out, "No analyzers found.")
}

func TestEmptyScanTestSuite(t *testing.T) {
	suite.Run(t, new(EmptyScanTestSuite))
}
