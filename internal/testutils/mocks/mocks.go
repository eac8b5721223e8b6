// Package mocks holds testify mocks for the device interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/srg/puttlink/internal/device"
)

// MockAdvertisement is a mock of device.Advertisement.
type MockAdvertisement struct {
	mock.Mock
}

func (m *MockAdvertisement) LocalName() string {
	return m.Called().String(0)
}

func (m *MockAdvertisement) Services() []string {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

func (m *MockAdvertisement) Connectable() bool {
	return m.Called().Bool(0)
}

func (m *MockAdvertisement) RSSI() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Addr() string {
	return m.Called().String(0)
}

// MockAdapter is a mock of device.Adapter.
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	return m.Called(ctx, allowDup, handler).Error(0)
}

func (m *MockAdapter) Dial(ctx context.Context, address string) (device.Client, error) {
	args := m.Called(ctx, address)
	if c := args.Get(0); c != nil {
		return c.(device.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClient is a mock of device.Client.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Address() string {
	return m.Called().String(0)
}

func (m *MockClient) Name() string {
	return m.Called().String(0)
}

func (m *MockClient) Subscribe(serviceUUID, charUUID string, handler func(data []byte)) error {
	return m.Called(serviceUUID, charUUID, handler).Error(0)
}

func (m *MockClient) Write(serviceUUID, charUUID string, data []byte, withResponse bool) error {
	return m.Called(serviceUUID, charUUID, data, withResponse).Error(0)
}

func (m *MockClient) Disconnected() <-chan struct{} {
	args := m.Called()
	if ch := args.Get(0); ch != nil {
		return ch.(chan struct{})
	}
	return nil
}

func (m *MockClient) Close() error {
	return m.Called().Error(0)
}

// MockGate is a mock of device.PermissionGate.
type MockGate struct {
	mock.Mock
}

func (m *MockGate) Ensure(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
