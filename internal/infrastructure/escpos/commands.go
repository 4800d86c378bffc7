package escpos

// ESC/POS control bytes
const (
	esc byte = 0x1B
	gs  byte = 0x1D
	lf  byte = 0x0A
)

func cmdInit() []byte {
	return []byte{esc, 0x40}
}

func cmdBold(on bool) []byte {
	if on {
		return []byte{esc, 0x45, 0x01}
	}
	return []byte{esc, 0x45, 0x00}
}

func cmdAlignLeft() []byte {
	return []byte{esc, 0x61, 0x00}
}

func cmdAlignCenter() []byte {
	return []byte{esc, 0x61, 0x01}
}

func cmdDoubleHeight(on bool) []byte {
	if on {
		return []byte{esc, 0x21, 0x10}
	}
	return []byte{esc, 0x21, 0x00}
}

// cmdCut performs a full cut after feeding past the cutter
func cmdCut() []byte {
	return []byte{gs, 0x56, 0x00}
}

func cmdFeed(lines byte) []byte {
	return []byte{esc, 0x64, lines}
}

// cmdRaster prints a raster bit image in normal density (GS v 0)
func cmdRaster(widthBytes, height int, data []byte) []byte {
	cmd := []byte{
		gs, 0x76, 0x30, 0x00,
		byte(widthBytes), byte(widthBytes >> 8),
		byte(height), byte(height >> 8),
	}
	return append(cmd, data...)
}
