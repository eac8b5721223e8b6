package testutils

import (
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

// MockPeripheralSuite provides a testify suite with a mocked analyzer.
//
// Default usage (reachable analyzer, no advertisements):
//
//	type LinkSuite struct {
//	    testutils.MockPeripheralSuite
//	}
//
// Custom peripheral: configure the builder first, then call the parent.
//
//	func (s *LinkSuite) SetupTest() {
//	    s.WithPeripheral().WithWriteError(errors.New("gatt: write failed"))
//	    s.MockPeripheralSuite.SetupTest()
//	}
type MockPeripheralSuite struct {
	suite.Suite

	Helper *TestHelper
	Logger *logrus.Logger

	PeripheralBuilder *PeripheralBuilder
	Peripheral        *MockPeripheral
}

// SetupSuite creates the helper and logger once.
func (s *MockPeripheralSuite) SetupSuite() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.Logger.Debug("Suite setup completed")
}

// SetupTest builds the configured peripheral (or a default one).
func (s *MockPeripheralSuite) SetupTest() {
	if s.PeripheralBuilder == nil {
		s.PeripheralBuilder = NewPeripheralBuilder(s.T())
	}
	s.Peripheral = s.PeripheralBuilder.Build()
	s.Logger.Debug("Test setup completed - ready for execution")
}

// TearDownTest resets the builder so each test starts clean.
func (s *MockPeripheralSuite) TearDownTest() {
	s.PeripheralBuilder = nil
	s.Peripheral = nil
}

// WithPeripheral returns the builder for fluent configuration in SetupTest.
func (s *MockPeripheralSuite) WithPeripheral() *PeripheralBuilder {
	if s.PeripheralBuilder == nil {
		s.PeripheralBuilder = NewPeripheralBuilder(s.T())
	}
	return s.PeripheralBuilder
}
