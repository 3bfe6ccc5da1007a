package utils

import (
	"fmt"

	"github.com/notargets/gocca"
)

// deviceProps maps the backend names accepted on the command line to OCCA
// device properties.
var deviceProps = map[string]string{
	"serial": `{"mode": "Serial"}`,
	"openmp": `{"mode": "OpenMP"}`,
	"cuda":   `{"mode": "CUDA", "device_id": 0}`,
}

// CreateDevice creates a Device for the named backend ("serial", "openmp"
// or "cuda").
func CreateDevice(backend string) (*gocca.OCCADevice, error) {
	props, ok := deviceProps[backend]
	if !ok {
		return nil, fmt.Errorf("unknown device backend %q", backend)
	}
	device, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("create %s device: %w", backend, err)
	}
	return device, nil
}

// CreateTestDevice creates a Device for testing, preferring parallel backends
func CreateTestDevice() *gocca.OCCADevice {
	for _, backend := range []string{"openmp", "cuda", "serial"} {
		device, err := CreateDevice(backend)
		if err == nil {
			fmt.Printf("Created %s Device\n", device.Mode())
			return device
		}
	}
	// Should not reach here
	panic("Failed to create any Device")
}
