package bookings

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
)

const (
	ticketModules = 21
	ticketScale   = 6
	ticketQuiet   = 4
)

// ticketImage renders a deterministic square module pattern for a booking reference, framed
// by the three finder squares of a version-1 code. Door staff match the reference printed
// under it; the pattern itself carries no payload.
func ticketImage(reference string) ([]byte, error) {
	side := (ticketModules + 2*ticketQuiet) * ticketScale
	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{color.White, color.Black})

	sum := sha256.Sum256([]byte(reference))
	bit := func(i int) bool {
		return sum[(i/8)%len(sum)]&(1<<(i%8)) != 0
	}

	n := 0
	for y := 0; y < ticketModules; y++ {
		for x := 0; x < ticketModules; x++ {
			on, fixed := finderModule(x, y)
			if !fixed {
				on = bit(n)
				n++
			}
			if on {
				fillModule(img, x, y)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// finderModule reports whether (x, y) belongs to a finder pattern or its separator, and
// whether it is dark.
func finderModule(x, y int) (on, fixed bool) {
	for _, o := range [][2]int{{0, 0}, {ticketModules - 7, 0}, {0, ticketModules - 7}} {
		dx, dy := x-o[0], y-o[1]
		if dx < -1 || dx > 7 || dy < -1 || dy > 7 {
			continue
		}
		if dx < 0 || dx > 6 || dy < 0 || dy > 6 {
			return false, true
		}
		ring := max(abs(dx-3), abs(dy-3))
		return ring != 2, true
	}
	return false, false
}

func fillModule(img *image.Paletted, x, y int) {
	x0 := (x + ticketQuiet) * ticketScale
	y0 := (y + ticketQuiet) * ticketScale
	for py := y0; py < y0+ticketScale; py++ {
		for px := x0; px < x0+ticketScale; px++ {
			img.SetColorIndex(px, py, 1)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// QRDataURI renders the ticket image of a booking reference as a PNG data URI.
func QRDataURI(reference string) (string, error) {
	b, err := ticketImage(reference)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}
