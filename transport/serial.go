package transport

import (
	"fmt"
	"sort"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialOpener opens serial ports with go.bug.st/serial using 8N1 framing.
type SerialOpener struct{}

// Open opens endpoint at speed baud and applies the read timeout.
func (SerialOpener) Open(endpoint string, speed int, timeout time.Duration) (Port, error) {
	mode := &serial.Mode{
		BaudRate: speed,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(endpoint, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s at %d baud: %w", endpoint, speed, err)
	}

	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", endpoint, err)
	}

	return port, nil
}

// PortInfo describes an available serial port.
type PortInfo struct {
	// Name is the endpoint to pass to Open, e.g. "/dev/ttyUSB0" or "COM3"
	Name string

	// IsUSB is true for USB serial adapters; the fields below are only set then
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	s := fmt.Sprintf("%s [%s:%s]", p.Name, p.VID, p.PID)
	if p.Product != "" {
		s += " " + p.Product
	}
	if p.SerialNumber != "" {
		s += " (" + p.SerialNumber + ")"
	}
	return s
}

// ListPorts returns the available serial ports sorted by name.
// USB metadata is filled in when detailed enumeration is supported.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		names, err := serial.GetPortsList()
		if err != nil {
			return nil, fmt.Errorf("list serial ports: %w", err)
		}
		infos := make([]PortInfo, 0, len(names))
		for _, name := range names {
			infos = append(infos, PortInfo{Name: name})
		}
		sortPorts(infos)
		return infos, nil
	}

	infos := make([]PortInfo, 0, len(details))
	for _, d := range details {
		infos = append(infos, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sortPorts(infos)
	return infos, nil
}

// PortNames returns the names of the available serial ports.
func PortNames() ([]string, error) {
	infos, err := ListPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

func sortPorts(infos []PortInfo) {
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
}
