package addr

// memory map, as reported by the remote initial memory maps
const (
	// ROMStart is the first byte of cartridge ROM bank 0.
	ROMStart uint16 = 0x0000
	// VRAMStart is the start of video RAM.
	VRAMStart uint16 = 0x8000
	// ExtRAMStart is the start of external (cartridge) RAM.
	ExtRAMStart uint16 = 0xA000
	// WRAMStart is the start of work RAM.
	WRAMStart uint16 = 0xC000
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each)
	OAMStart uint16 = 0xFE00
	// IOStart is the start of the memory mapped I/O page. 8-bit I/O
	// addressing (LDH, LD [C]) is relative to it.
	IOStart uint16 = 0xFF00
	// HRAMStart is the start of high RAM.
	HRAMStart uint16 = 0xFF80
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad, serial and timers
const (
	P1   uint16 = 0xFF00
	SB   uint16 = 0xFF01
	SC   uint16 = 0xFF02
	DIV  uint16 = 0xFF04
	TIMA uint16 = 0xFF05
	TMA  uint16 = 0xFF06
	TAC  uint16 = 0xFF07
)

var ioNames = map[uint16]string{
	P1: "P1", SB: "SB", SC: "SC",
	DIV: "DIV", TIMA: "TIMA", TMA: "TMA", TAC: "TAC",
	IF: "IF", IE: "IE",
	LCDC: "LCDC", STAT: "STAT", SCY: "SCY", SCX: "SCX", LY: "LY", LYC: "LYC",
	DMA: "DMA", BGP: "BGP", OBP0: "OBP0", OBP1: "OBP1", WY: "WY", WX: "WX",
}

// Name returns the mnemonic of a hardware register mapped at address, used to
// annotate indirect operands such as LDH [C], A.
func Name(address uint16) (string, bool) {
	name, ok := ioNames[address]
	return name, ok
}

// IO returns the absolute address of an 8-bit I/O offset.
func IO(offset uint8) uint16 {
	return IOStart + uint16(offset)
}
