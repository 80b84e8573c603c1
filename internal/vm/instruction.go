package vm

import "fmt"

// instruction handles every opcode for which raw&mask == value.
// PC already points at the next instruction when execute runs.
type instruction struct {
	mask    uint16
	value   uint16
	name    func(op Opcode) string
	execute func(c *CPU, op Opcode)
}

// Mnemonic disassembles raw. ok is false when no instruction accepts it.
func Mnemonic(raw uint16) (text string, ok bool) {
	for i := range instructionSet {
		if raw&instructionSet[i].mask == instructionSet[i].value {
			return instructionSet[i].name(Decode(raw)), true
		}
	}
	return "", false
}

func fixedName(name string) func(Opcode) string {
	return func(Opcode) string {
		return name
	}
}

func addrName(name string) func(Opcode) string {
	return func(op Opcode) string {
		return fmt.Sprintf("%s 0x%03x", name, op.NNN)
	}
}

func regConstName(name string) func(Opcode) string {
	return func(op Opcode) string {
		return fmt.Sprintf("%s v%x, %d", name, op.X, op.NN)
	}
}

func regRegName(name string) func(Opcode) string {
	return func(op Opcode) string {
		return fmt.Sprintf("%s v%x, v%x", name, op.X, op.Y)
	}
}

func regName(name string) func(Opcode) string {
	return func(op Opcode) string {
		return fmt.Sprintf("%s v%x", name, op.X)
	}
}

// instructionSet is scanned in order; the first match wins.
var instructionSet = [...]instruction{
	// 00E0	cls	Clear the screen
	{
		mask: 0xFFFF, value: 0x00E0,
		name: fixedName("cls"),
		execute: func(c *CPU, _ Opcode) {
			c.state.display.Clear()
		},
	},

	// 00EE	rts	return from subroutine call
	{
		mask: 0xFFFF, value: 0x00EE,
		name: fixedName("rts"),
		execute: func(c *CPU, _ Opcode) {
			c.state.pc = c.state.pop()
		},
	},

	// 1xxx	jmp xxx	jump to address xxx
	{
		mask: 0xF000, value: 0x1000,
		name: addrName("jmp"),
		execute: func(c *CPU, op Opcode) {
			c.state.pc = op.NNN
		},
	},

	// 2xxx	jsr xxx	jump to subroutine at address xxx
	{
		mask: 0xF000, value: 0x2000,
		name: addrName("jsr"),
		execute: func(c *CPU, op Opcode) {
			c.state.push(c.state.pc)
			c.state.pc = op.NNN
		},
	},

	// 3rxx	skeq vr,xx	skip if register r = constant
	{
		mask: 0xF000, value: 0x3000,
		name: regConstName("skeq"),
		execute: func(c *CPU, op Opcode) {
			c.skipIf(c.state.registers[op.X] == op.NN)
		},
	},

	// 4rxx	skne vr,xx	skip if register r <> constant
	{
		mask: 0xF000, value: 0x4000,
		name: regConstName("skne"),
		execute: func(c *CPU, op Opcode) {
			c.skipIf(c.state.registers[op.X] != op.NN)
		},
	},

	// 5ry0	skeq vr,vy	skip if register r = register y
	{
		mask: 0xF00F, value: 0x5000,
		name: regRegName("skeq"),
		execute: func(c *CPU, op Opcode) {
			c.skipIf(c.state.registers[op.X] == c.state.registers[op.Y])
		},
	},

	// 6rxx	mov vr,xx	move constant to register r
	{
		mask: 0xF000, value: 0x6000,
		name: regConstName("mov"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] = op.NN
		},
	},

	// 7rxx	add vr,xx	add constant to register r	No carry generated
	{
		mask: 0xF000, value: 0x7000,
		name: regConstName("add"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] += op.NN
		},
	},

	// 8ry0	mov vr,vy	move register vy into vr
	{
		mask: 0xF00F, value: 0x8000,
		name: regRegName("mov"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] = c.state.registers[op.Y]
		},
	},

	// 8ry1	or rx,ry	or register vy into register vx
	{
		mask: 0xF00F, value: 0x8001,
		name: regRegName("or"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] |= c.state.registers[op.Y]
		},
	},

	// 8ry2	and rx,ry	and register vy into register vx
	{
		mask: 0xF00F, value: 0x8002,
		name: regRegName("and"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] &= c.state.registers[op.Y]
		},
	},

	// 8ry3	xor rx,ry	exclusive or register ry into register rx
	{
		mask: 0xF00F, value: 0x8003,
		name: regRegName("xor"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] ^= c.state.registers[op.Y]
		},
	},

	// 8ry4	add vr,vy	add register vy to vr, carry in vf
	{
		mask: 0xF00F, value: 0x8004,
		name: regRegName("add"),
		execute: func(c *CPU, op Opcode) {
			x := c.state.registers[op.X]
			y := c.state.registers[op.Y]

			c.state.registers[op.X] = x + y
			c.state.setFlag(uint16(x)+uint16(y) > 0xFF)
		},
	},

	// 8ry5	sub vr,vy	subtract register vy from vr, vf set to 0 on borrow
	{
		mask: 0xF00F, value: 0x8005,
		name: regRegName("sub"),
		execute: func(c *CPU, op Opcode) {
			x := c.state.registers[op.X]
			y := c.state.registers[op.Y]

			c.state.registers[op.X] = x - y
			c.state.setFlag(y <= x)
		},
	},

	// 8ry6	shr vr	shift register vr right, bit 0 goes into register vf
	{
		mask: 0xF00F, value: 0x8006,
		name: regName("shr"),
		execute: func(c *CPU, op Opcode) {
			v := c.shiftSource(op)

			c.state.registers[op.X] = v >> 1
			c.state.setFlag(v&0x01 != 0)
		},
	},

	// 8ry7	rsb vr,vy	subtract register vr from register vy, result in vr, vf set to 0 on borrow
	{
		mask: 0xF00F, value: 0x8007,
		name: regRegName("rsb"),
		execute: func(c *CPU, op Opcode) {
			x := c.state.registers[op.X]
			y := c.state.registers[op.Y]

			c.state.registers[op.X] = y - x
			c.state.setFlag(x <= y)
		},
	},

	// 8rye	shl vr	shift register vr left, bit 7 goes into register vf
	{
		mask: 0xF00F, value: 0x800E,
		name: regName("shl"),
		execute: func(c *CPU, op Opcode) {
			v := c.shiftSource(op)

			c.state.registers[op.X] = v << 1
			c.state.setFlag(v&0x80 != 0)
		},
	},

	// 9ry0	skne vr,vy	skip if register r <> register y
	{
		mask: 0xF00F, value: 0x9000,
		name: regRegName("skne"),
		execute: func(c *CPU, op Opcode) {
			c.skipIf(c.state.registers[op.X] != c.state.registers[op.Y])
		},
	},

	// axxx	mvi xxx	load index register with constant xxx
	{
		mask: 0xF000, value: 0xA000,
		name: addrName("mvi"),
		execute: func(c *CPU, op Opcode) {
			c.state.index = op.NNN
		},
	},

	// bxxx	jmi xxx	jump to pc + xxx + register v0
	{
		mask: 0xF000, value: 0xB000,
		name: addrName("jmi"),
		execute: func(c *CPU, op Opcode) {
			c.state.pc += op.NNN + uint16(c.state.registers[0])
		},
	},

	// crxx	rand vr,xx	vr = random byte masked by xx
	{
		mask: 0xF000, value: 0xC000,
		name: regConstName("rand"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] = c.randomByte() & op.NN
		},
	},

	// drys	sprite vr,vy,s	draw sprite from I at (vr, vy), height s
	{
		mask: 0xF000, value: 0xD000,
		name: func(op Opcode) string {
			return fmt.Sprintf("sprite v%x, v%x, %d", op.X, op.Y, op.N)
		},
		execute: func(c *CPU, op Opcode) {
			at := Coordinates{
				X: c.state.registers[op.X] % ScreenWidth,
				Y: c.state.registers[op.Y] % ScreenHeight,
			}
			sprite := c.state.memory.Slice(c.state.index, int(op.N))

			erased := c.state.display.ApplySprite(sprite, at)
			if c.quirks.CollisionFlag {
				c.state.setFlag(erased)
			}
		},
	},

	// ek9e	skpr k	skip if key (register rk) pressed
	{
		mask: 0xF0FF, value: 0xE09E,
		name: regName("skpr"),
		execute: func(c *CPU, op Opcode) {
			c.skipIf(c.state.keys.Pressed(Key(c.state.registers[op.X])))
		},
	},

	// eka1	skup k	skip if key (register rk) not pressed
	{
		mask: 0xF0FF, value: 0xE0A1,
		name: regName("skup"),
		execute: func(c *CPU, op Opcode) {
			c.skipIf(!c.state.keys.Pressed(Key(c.state.registers[op.X])))
		},
	},

	// fr07	gdelay vr	get delay timer into vr
	{
		mask: 0xF0FF, value: 0xF007,
		name: regName("gdelay"),
		execute: func(c *CPU, op Opcode) {
			c.state.registers[op.X] = c.state.delayTimer.Value()
		},
	},

	// fr0a	key vr	wait until key (register vr) is pressed
	{
		mask: 0xF0FF, value: 0xF00A,
		name: regName("key"),
		execute: func(c *CPU, op Opcode) {
			if !c.state.keys.Pressed(Key(c.state.registers[op.X])) {
				c.state.pc -= InstructionSize
			}
		},
	},

	// fr15	sdelay vr	set the delay timer to vr
	{
		mask: 0xF0FF, value: 0xF015,
		name: regName("sdelay"),
		execute: func(c *CPU, op Opcode) {
			c.state.delayTimer.Set(c.state.registers[op.X])
		},
	},

	// fr18	ssound vr	set the sound timer to vr
	{
		mask: 0xF0FF, value: 0xF018,
		name: regName("ssound"),
		execute: func(c *CPU, op Opcode) {
			c.state.soundTimer.Set(c.state.registers[op.X])
		},
	},

	// fr1e	adi vr	add register vr to the index register, vf set when I passes 0xFFF
	{
		mask: 0xF0FF, value: 0xF01E,
		name: regName("adi"),
		execute: func(c *CPU, op Opcode) {
			c.state.index += uint16(c.state.registers[op.X])
			c.state.setFlag(c.state.index > MaxAddress)
		},
	},

	// fr29	font vr	point I to the font glyph for the digit in vr
	{
		mask: 0xF0FF, value: 0xF029,
		name: regName("font"),
		execute: func(c *CPU, op Opcode) {
			c.state.index = FontStart + FontGlyphSize*uint16(c.state.registers[op.X])
		},
	},

	// fr33	bcd vr	store the decimal digits of vr at I, I+1, I+2
	{
		mask: 0xF0FF, value: 0xF033,
		name: regName("bcd"),
		execute: func(c *CPU, op Opcode) {
			x := c.state.registers[op.X]
			i := c.state.index

			c.state.memory.Write(i, x/100)
			c.state.memory.Write(i+1, (x/10)%10)
			c.state.memory.Write(i+2, x%10)
		},
	},

	// fr55	str v0-vr	store registers v0-vr at I onwards
	{
		mask: 0xF0FF, value: 0xF055,
		name: func(op Opcode) string {
			return fmt.Sprintf("str v0-v%x", op.X)
		},
		execute: func(c *CPU, op Opcode) {
			for r := uint16(0); r <= uint16(op.X); r++ {
				c.state.memory.Write(c.state.index+r, c.state.registers[r])
			}
		},
	},

	// fr65	ldr v0-vr	load registers v0-vr from I onwards
	{
		mask: 0xF0FF, value: 0xF065,
		name: func(op Opcode) string {
			return fmt.Sprintf("ldr v0-v%x", op.X)
		},
		execute: func(c *CPU, op Opcode) {
			for r := uint16(0); r <= uint16(op.X); r++ {
				c.state.registers[r] = c.state.memory.Read(c.state.index + r)
			}
		},
	},
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.state.pc += InstructionSize
	}
}

func (c *CPU) shiftSource(op Opcode) uint8 {
	if c.quirks.ShiftUsesVY {
		return c.state.registers[op.Y]
	}
	return c.state.registers[op.X]
}
