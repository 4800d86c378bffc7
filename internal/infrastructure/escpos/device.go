package escpos

import (
	"fmt"
	"net"
	"os"
	"time"

	"go.bug.st/serial"
)

// Device is an exclusive connection to a thermal printer. Connect
// acquires the underlying transport; Close releases it so another
// process (or the next job) can take over.
type Device interface {
	Connect() error
	Write(p []byte) (int, error)
	Close() error
}

// DeviceOptions selects and parameterizes the transport
type DeviceOptions struct {
	Transport string // serial, network or file
	Device    string
	BaudRate  int
}

// NewDevice creates the device for the configured transport
func NewDevice(opts DeviceOptions) (Device, error) {
	switch opts.Transport {
	case "serial":
		return &serialDevice{port: opts.Device, baud: opts.BaudRate}, nil
	case "network":
		return &networkDevice{address: opts.Device}, nil
	case "file":
		return &fileDevice{path: opts.Device}, nil
	default:
		return nil, fmt.Errorf("unknown printer transport: %s", opts.Transport)
	}
}

type serialDevice struct {
	port string
	baud int
	conn serial.Port
}

func (d *serialDevice) Connect() error {
	mode := &serial.Mode{BaudRate: d.baud}
	conn, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("opening serial port %s: %w", d.port, err)
	}
	d.conn = conn
	return nil
}

func (d *serialDevice) Write(p []byte) (int, error) {
	if d.conn == nil {
		return 0, fmt.Errorf("serial port %s not connected", d.port)
	}
	return d.conn.Write(p)
}

func (d *serialDevice) Close() error {
	if d.conn == nil {
		return nil
	}
	conn := d.conn
	d.conn = nil
	return conn.Close()
}

type networkDevice struct {
	address string
	conn    net.Conn
}

func (d *networkDevice) Connect() error {
	conn, err := net.DialTimeout("tcp", d.address, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connecting to printer at %s: %w", d.address, err)
	}
	d.conn = conn
	return nil
}

func (d *networkDevice) Write(p []byte) (int, error) {
	if d.conn == nil {
		return 0, fmt.Errorf("printer at %s not connected", d.address)
	}
	return d.conn.Write(p)
}

func (d *networkDevice) Close() error {
	if d.conn == nil {
		return nil
	}
	conn := d.conn
	d.conn = nil
	return conn.Close()
}

// fileDevice writes to a character device (e.g. /dev/usb/lp0) or to a
// spool file for diagnostics
type fileDevice struct {
	path string
	file *os.File
}

func (d *fileDevice) Connect() error {
	file, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening print device %s: %w", d.path, err)
	}
	d.file = file
	return nil
}

func (d *fileDevice) Write(p []byte) (int, error) {
	if d.file == nil {
		return 0, fmt.Errorf("print device %s not connected", d.path)
	}
	return d.file.Write(p)
}

func (d *fileDevice) Close() error {
	if d.file == nil {
		return nil
	}
	file := d.file
	d.file = nil
	return file.Close()
}
