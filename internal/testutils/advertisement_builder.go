package testutils

import (
	"github.com/srg/puttlink/internal/device"
	"github.com/srg/puttlink/internal/testutils/mocks"
)

// AdvertisementBuilder builds mocked advertisements for scan tests.
// All expectations are optional so tests only pay for what the code reads.
type AdvertisementBuilder struct {
	name        string
	address     string
	rssi        int
	services    []string
	connectable bool
}

// NewAdvertisementBuilder starts a connectable advertisement for the analyzer service.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{
		services:    []string{device.AnalyzerServiceUUID},
		connectable: true,
		rssi:        -60,
	}
}

func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.name = name
	return b
}

func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.address = addr
	return b
}

func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.rssi = rssi
	return b
}

// WithServices replaces the advertised service UUIDs.
func (b *AdvertisementBuilder) WithServices(uuids ...string) *AdvertisementBuilder {
	b.services = uuids
	return b
}

func (b *AdvertisementBuilder) WithConnectable(connectable bool) *AdvertisementBuilder {
	b.connectable = connectable
	return b
}

// Build creates the mock advertisement.
func (b *AdvertisementBuilder) Build() device.Advertisement {
	adv := &mocks.MockAdvertisement{}
	adv.On("LocalName").Return(b.name).Maybe()
	adv.On("Addr").Return(b.address).Maybe()
	adv.On("RSSI").Return(b.rssi).Maybe()
	adv.On("Services").Return(b.services).Maybe()
	adv.On("Connectable").Return(b.connectable).Maybe()
	return adv
}
