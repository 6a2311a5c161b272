package daemon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
)

const iconSize = 32

var (
	iconBorder = color.RGBA{R: 0x73, G: 0x73, B: 0x73, A: 0xff}
	iconFill   = color.RGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}
)

// progressIcon renders a square ICO whose fill rises from the bottom with pct
func progressIcon(pct float64) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	pct = math.Max(0, math.Min(100, pct))
	inner := iconSize - 4
	filled := int(math.Round(pct / 100 * float64(inner)))

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			switch {
			case x < 2 || y < 2 || x >= iconSize-2 || y >= iconSize-2:
				img.Set(x, y, iconBorder)
			case y >= iconSize-2-filled:
				img.Set(x, y, iconFill)
			}
		}
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil
	}
	return wrapICO(pngBuf.Bytes(), iconSize)
}

// wrapICO embeds PNG data in a single-image ICO container
func wrapICO(pngData []byte, size int) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian

	// ICONDIR
	binary.Write(&b, le, uint16(0))
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint16(1))

	// ICONDIRENTRY
	b.WriteByte(byte(size))
	b.WriteByte(byte(size))
	b.WriteByte(0)
	b.WriteByte(0)
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint16(32))
	binary.Write(&b, le, uint32(len(pngData)))
	binary.Write(&b, le, uint32(6+16))

	b.Write(pngData)
	return b.Bytes()
}
