// Package printing contains the print-dispatch bounded context.
// It owns print jobs and their lifecycle; receipts themselves are
// modelled in the receipt package and orders are an external contract.
package printing
