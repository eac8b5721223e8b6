// Package device defines the vendor-neutral view of the putting analyzer
// peripheral: discovery records, the narrow BLE client surface the link layer
// drives, the analyzer's GATT identifiers and the error taxonomy shared by the
// link, session and CLI layers.
//
// Concrete BLE access lives in the go-ble subpackage; tests substitute
// testify mocks for the Adapter, Client and PermissionGate interfaces.
package device
