package emulator

// Number of registers in a saved state (r1..r25, gp, sp, fp, ra, HI, LO)
const STATE_REG_NUM = 31

// Size of a serialized State in words and bytes
const (
	STATE_WORDS = 4 + STATE_REG_NUM
	STATE_SIZE  = STATE_WORDS * 4
)

// Indices into State.Reg
const (
	REG_AT = 0
	REG_V0 = 1
	REG_V1 = 2
	REG_A0 = 3
	REG_A1 = 4
	REG_A2 = 5
	REG_A3 = 6
	REG_T9 = 24
	REG_GP = 25
	REG_SP = 26
	REG_FP = 27
	REG_RA = 28
	REG_HI = 29
	REG_LO = 30
)

// A full register snapshot. Always copied by value
type State struct {
	Asid   uint32
	Cause  uint32
	Status uint32
	PC     uint32
	Reg    [STATE_REG_NUM]int32
}

func (s *State) A0() int32 { return s.Reg[REG_A0] }
func (s *State) A1() int32 { return s.Reg[REG_A1] }
func (s *State) A2() int32 { return s.Reg[REG_A2] }
func (s *State) A3() int32 { return s.Reg[REG_A3] }

func (s *State) SetV0(v int32) { s.Reg[REG_V0] = v }
func (s *State) V0() int32     { return s.Reg[REG_V0] }

// Maps a CPU register index (1..31) to a State.Reg index. k0 and k1
// belong to the kernel and are not saved, so they return false
func stateRegIndex(cpuReg uint32) (int, bool) {
	switch {
	case cpuReg >= 1 && cpuReg <= 25:
		return int(cpuReg) - 1, true
	case cpuReg >= 28 && cpuReg <= 31:
		return int(cpuReg) - 3, true
	}
	return 0, false
}

// Word accessor used to move states in and out of memory
type Memory interface {
	Load32(addr uint32) uint32
	Store32(addr, val uint32)
}

// Reads the state serialized at `addr`
func LoadState(mem Memory, addr uint32) State {
	var s State
	s.Asid = mem.Load32(addr)
	s.Cause = mem.Load32(addr + 4)
	s.Status = mem.Load32(addr + 8)
	s.PC = mem.Load32(addr + 12)
	for i := range s.Reg {
		s.Reg[i] = int32(mem.Load32(addr + 16 + uint32(i)*4))
	}
	return s
}

// Serializes `s` at `addr`
func StoreState(mem Memory, addr uint32, s State) {
	mem.Store32(addr, s.Asid)
	mem.Store32(addr+4, s.Cause)
	mem.Store32(addr+8, s.Status)
	mem.Store32(addr+12, s.PC)
	for i, r := range s.Reg {
		mem.Store32(addr+16+uint32(i)*4, uint32(r))
	}
}
