// Package escpos renders receipt models into ESC/POS command streams
// and drives thermal print devices over serial, TCP or character
// device transports.
package escpos
