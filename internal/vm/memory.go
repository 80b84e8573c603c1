package vm

import "fmt"

// Memory is the 4 KiB address space. Accesses past MaxAddress panic: they mean
// a malformed program or a caller bug, not a condition the machine can recover from.
type Memory [MemorySize]uint8

func (m *Memory) Read(addr uint16) uint8 {
	m.check(addr, 1, "read")
	return m[addr]
}

func (m *Memory) Write(addr uint16, v uint8) {
	m.check(addr, 1, "write")
	m[addr] = v
}

// Slice returns the n bytes starting at addr. The slice aliases memory.
func (m *Memory) Slice(addr uint16, n int) []uint8 {
	m.check(addr, n, "read")
	return m[int(addr) : int(addr)+n]
}

// Copy writes data starting at addr.
func (m *Memory) Copy(addr uint16, data []uint8) {
	m.check(addr, len(data), "write")
	copy(m[addr:], data)
}

func (m *Memory) check(addr uint16, n int, access string) {
	if int(addr)+n > MemorySize {
		panic(fmt.Sprintf("vm: memory %s of %d bytes at 0x%04X exceeds 0x%03X", access, n, addr, MaxAddress))
	}
}
