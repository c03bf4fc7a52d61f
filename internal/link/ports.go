package link

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes one discovered serial port.
type PortInfo struct {
	Name        string `json:"name" example:"/dev/ttyUSB0" doc:"Port device path"`
	Description string `json:"description" example:"USB Serial (1a86:7523)" doc:"Human-readable description"`
	IsUSB       bool   `json:"is_usb" example:"true" doc:"Whether the port is a USB device"`
}

// Ports enumerates the serial ports present on the system.
func Ports() ([]PortInfo, error) {
	list, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(list))
	for _, p := range list {
		desc := p.Product
		if p.IsUSB {
			if desc == "" {
				desc = "USB Serial"
			}
			desc = fmt.Sprintf("%s (%s:%s)", desc, p.VID, p.PID)
		}
		if desc == "" {
			desc = "Serial port"
		}
		ports = append(ports, PortInfo{
			Name:        p.Name,
			Description: desc,
			IsUSB:       p.IsUSB,
		})
	}
	return ports, nil
}
