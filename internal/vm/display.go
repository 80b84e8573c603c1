package vm

// Display is the 64x32 monochrome framebuffer, indexed [row][column].
type Display [ScreenHeight][ScreenWidth]bool

// Coordinates anchor a sprite. Callers wrap them into the screen first;
// the sprite body itself is clipped, never wrapped.
type Coordinates struct {
	X, Y uint8
}

func (d *Display) Clear() {
	*d = Display{}
}

func (d *Display) Pixel(x, y int) bool {
	return d[y][x]
}

// ApplySprite XORs sprite onto the display, one byte per 8-pixel row, starting
// at c. Rows past the bottom edge and columns past the right edge are dropped.
// Zero bits leave the destination untouched. It reports whether any lit pixel
// was turned off.
func (d *Display) ApplySprite(sprite []uint8, c Coordinates) (erased bool) {
	x0 := int(c.X)
	xEnd := min(x0+8, ScreenWidth)

	for i, row := range sprite {
		y := int(c.Y) + i
		if y >= ScreenHeight {
			break
		}

		for x := x0; x < xEnd; x++ {
			mask := uint8(0x80 >> (x - x0))
			if row&mask == 0 {
				continue
			}
			if d[y][x] {
				erased = true
			}
			d[y][x] = !d[y][x]
		}
	}

	return erased
}

// Lit counts the pixels that are on.
func (d *Display) Lit() int {
	n := 0
	for y := range d {
		for x := range d[y] {
			if d[y][x] {
				n++
			}
		}
	}
	return n
}
