// Package receipt contains the renderer-agnostic receipt model and the
// pure text-layout rules shared by every output channel.
//
// A Model is assembled once per order and consumed by both the thermal
// device renderer and the PDF renderer, so that the two artifacts agree
// on every wrap and alignment decision.
package receipt
