package goble

import (
	"testing"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAdvertisement implements ble.Advertisement for testing
type MockAdvertisement struct {
	mock.Mock
}

func (m *MockAdvertisement) LocalName() string {
	return m.Called().String(0)
}

func (m *MockAdvertisement) ManufacturerData() []byte {
	return m.Called().Get(0).([]byte)
}

func (m *MockAdvertisement) ServiceData() []ble.ServiceData {
	return m.Called().Get(0).([]ble.ServiceData)
}

func (m *MockAdvertisement) Services() []ble.UUID {
	return m.Called().Get(0).([]ble.UUID)
}

func (m *MockAdvertisement) OverflowService() []ble.UUID {
	return m.Called().Get(0).([]ble.UUID)
}

func (m *MockAdvertisement) TxPowerLevel() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Connectable() bool {
	return m.Called().Bool(0)
}

func (m *MockAdvertisement) SolicitedService() []ble.UUID {
	return m.Called().Get(0).([]ble.UUID)
}

func (m *MockAdvertisement) RSSI() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Addr() ble.Addr {
	return m.Called().Get(0).(ble.Addr)
}

// MockAddr implements ble.Addr for testing
type MockAddr struct {
	address string
}

func (m *MockAddr) String() string {
	return m.address
}

func TestBLEAdvertisement_Wraps(t *testing.T) {
	svc := ble.MustParse("19B10000-E8F2-537E-4F6C-D104768A1214")
	extra := ble.MustParse("180F")

	adv := &MockAdvertisement{}
	adv.On("LocalName").Return("PuttSense")
	adv.On("RSSI").Return(-58)
	adv.On("Connectable").Return(true)
	adv.On("Addr").Return(&MockAddr{"AA:BB:CC:DD:EE:FF"})
	adv.On("Services").Return([]ble.UUID{svc})
	adv.On("OverflowService").Return([]ble.UUID{extra})

	wrapped := NewBLEAdvertisement(adv)

	assert.Equal(t, "PuttSense", wrapped.LocalName())
	assert.Equal(t, -58, wrapped.RSSI())
	assert.True(t, wrapped.Connectable())
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", wrapped.Addr())
	assert.Equal(t, []string{svc.String(), extra.String()}, wrapped.Services())
	assert.Same(t, adv, wrapped.(*BLEAdvertisement).Unwrap())
	adv.AssertExpectations(t)
}
