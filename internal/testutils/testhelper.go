package testutils

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
)

type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
}

// NewTestHelper creates a test helper with a debug-level logger.
func NewTestHelper(t *testing.T) *TestHelper {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel) // enable debug logs to track execution flow
	return &TestHelper{
		T:      t,
		Logger: logger,
	}
}

// ResultFrame renders a base64 notification payload the way the analyzer sends it.
func ResultFrame(jsonStrFmt string, args ...interface{}) []byte {
	return []byte(base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf(jsonStrFmt, args...))))
}

// CreateMockAdvertisement builds an analyzer advertisement.
func CreateMockAdvertisement(name, address string, rssi int) *AdvertisementBuilder {
	return NewAdvertisementBuilder().WithName(name).WithAddress(address).WithRSSI(rssi)
}
