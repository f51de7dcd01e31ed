package dex

import "fmt"

// DebugOpcode is a debug_info_item state machine opcode.
type DebugOpcode uint8

const (
	DbgEndSequence DebugOpcode = iota
	DbgAdvancePC
	DbgAdvanceLine
	DbgStartLocal
	DbgStartLocalExtended
	DbgEndLocal
	DbgRestartLocal
	DbgSetPrologueEnd
	DbgSetEpilogueBegin
	DbgSetFile
	DbgFirstSpecial
)

const (
	dbgLineBase  = -4
	dbgLineRange = 15
)

var debugOpcodeNames = [...]string{
	"DBG_END_SEQUENCE",
	"DBG_ADVANCE_PC",
	"DBG_ADVANCE_LINE",
	"DBG_START_LOCAL",
	"DBG_START_LOCAL_EXTENDED",
	"DBG_END_LOCAL",
	"DBG_RESTART_LOCAL",
	"DBG_SET_PROLOGUE_END",
	"DBG_SET_EPILOGUE_BEGIN",
	"DBG_SET_FILE",
}

func (op DebugOpcode) String() string {
	if int(op) < len(debugOpcodeNames) {
		return debugOpcodeNames[op]
	}
	return fmt.Sprintf("DBG_SPECIAL(%#02x)", uint8(op))
}

func (op DebugOpcode) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// DebugInfo is a decoded debug_info_item.
type DebugInfo struct {
	LineStart uint32 `json:"line_start"`
	// ParameterNames is empty for parameters without a name.
	ParameterNames []string           `json:"parameter_names,omitempty"`
	Bytecode       []DebugInstruction `json:"bytecode,omitempty"`
}

// DebugInstruction is one decoded state machine step. Only the fields that
// Opcode carries are set; special opcodes carry both diffs.
type DebugInstruction struct {
	Opcode    DebugOpcode `json:"opcode"`
	AddrDiff  uint32      `json:"addr_diff,omitempty"`
	LineDiff  int32       `json:"line_diff,omitempty"`
	Register  uint32      `json:"register,omitempty"`
	Name      string      `json:"name,omitempty"`
	Type      string      `json:"type,omitempty"`
	Signature string      `json:"signature,omitempty"`
	File      string      `json:"file,omitempty"`
}

// Position maps a code address to a source line.
type Position struct {
	Addr uint32 `json:"addr"`
	Line uint32 `json:"line"`
}

// Positions runs the line-number state machine and returns every emitted
// position entry.
func (d *DebugInfo) Positions() []Position {
	var (
		out  []Position
		addr uint32
		line = int64(d.LineStart)
	)
	for _, insn := range d.Bytecode {
		switch {
		case insn.Opcode == DbgEndSequence:
			return out
		case insn.Opcode == DbgAdvancePC:
			addr += insn.AddrDiff
		case insn.Opcode == DbgAdvanceLine:
			line += int64(insn.LineDiff)
		case insn.Opcode >= DbgFirstSpecial:
			addr += insn.AddrDiff
			line += int64(insn.LineDiff)
			out = append(out, Position{Addr: addr, Line: uint32(line)})
		}
	}
	return out
}

type rawTryItem struct {
	StartAddr  uint32
	InsnCount  uint16
	HandlerOff uint16
}

func (l *linker) readCode(off uint32) (*Code, error) {
	if c, ok := l.codes[off]; ok {
		return c, nil
	}
	r, err := newReader(l.raw.buf, off, l.raw.bo)
	if err != nil {
		return nil, err
	}
	var (
		c         Code
		triesSize uint16
		debugOff  uint32
		insnsSize uint32
	)
	for _, p := range []*uint16{&c.RegistersSize, &c.InsSize, &c.OutsSize, &triesSize} {
		if *p, err = r.u16(); err != nil {
			return nil, err
		}
	}
	if debugOff, err = r.u32(); err != nil {
		return nil, err
	}
	if insnsSize, err = r.u32(); err != nil {
		return nil, err
	}
	if c.InsSize > c.RegistersSize {
		return nil, formatErr(ErrMalformed, int(off), "ins_size %d exceeds registers_size %d", c.InsSize, c.RegistersSize)
	}
	if err := r.need(2 * int(insnsSize)); err != nil {
		return nil, err
	}
	c.Insns = make([]uint16, insnsSize)
	for i := range c.Insns {
		if c.Insns[i], err = r.u16(); err != nil {
			return nil, err
		}
	}

	if triesSize > 0 {
		if insnsSize%2 != 0 {
			if _, err := r.u16(); err != nil {
				return nil, err
			}
		}
		if err := l.readTries(r, &c, int(triesSize), insnsSize); err != nil {
			return nil, err
		}
	}

	if debugOff != 0 {
		if c.DebugInfo, err = l.readDebugInfo(debugOff); err != nil {
			return nil, err
		}
	}

	l.codes[off] = &c
	return &c, nil
}

func (l *linker) readTries(r *reader, c *Code, triesSize int, insnsSize uint32) error {
	tries := make([]rawTryItem, triesSize)
	for i := range tries {
		t := &tries[i]
		var err error
		if t.StartAddr, err = r.u32(); err != nil {
			return err
		}
		if t.InsnCount, err = r.u16(); err != nil {
			return err
		}
		if t.HandlerOff, err = r.u16(); err != nil {
			return err
		}
		if uint64(t.StartAddr)+uint64(t.InsnCount) > uint64(insnsSize) {
			return formatErr(ErrMalformed, r.off-8, "try block [%#x, +%d) outside %d code units", t.StartAddr, t.InsnCount, insnsSize)
		}
	}

	base := r.off
	size, err := r.uleb128()
	if err != nil {
		return err
	}
	byOff := make(map[uint16]*EncodedCatchHandler, size)
	for i := uint32(0); i < size; i++ {
		rel := r.off - base
		h, err := l.readCatchHandler(r)
		if err != nil {
			return err
		}
		c.Handlers = append(c.Handlers, h)
		if rel <= 0xffff {
			byOff[uint16(rel)] = h
		}
	}

	c.Tries = make([]TryItem, 0, len(tries))
	for _, t := range tries {
		h, ok := byOff[t.HandlerOff]
		if !ok {
			return formatErr(ErrMalformed, base+int(t.HandlerOff), "try block handler_off %#x does not start a handler", t.HandlerOff)
		}
		c.Tries = append(c.Tries, TryItem{StartAddr: t.StartAddr, InsnCount: t.InsnCount, Handler: h})
	}
	return nil
}

// readCatchHandler decodes an encoded_catch_handler. A non-positive size
// means a catch-all address follows the typed pairs.
func (l *linker) readCatchHandler(r *reader) (*EncodedCatchHandler, error) {
	size, err := r.sleb128()
	if err != nil {
		return nil, err
	}
	n := int64(size)
	if n < 0 {
		n = -n
	}
	if err := r.need(int(2 * n)); err != nil {
		return nil, err
	}
	h := &EncodedCatchHandler{}
	for i := int64(0); i < n; i++ {
		typeIdx, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		typ, err := l.typ(typeIdx)
		if err != nil {
			return nil, err
		}
		addr, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		h.Handlers = append(h.Handlers, EncodedTypeAddrPair{Type: typ, Addr: addr})
	}
	if size <= 0 {
		addr, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		h.CatchAllAddr = &addr
	}
	return h, nil
}

func (l *linker) readDebugInfo(off uint32) (*DebugInfo, error) {
	r, err := newReader(l.raw.buf, off, l.raw.bo)
	if err != nil {
		return nil, err
	}
	d := &DebugInfo{}
	if d.LineStart, err = r.uleb128(); err != nil {
		return nil, err
	}
	paramsSize, err := r.uleb128()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(paramsSize)); err != nil {
		return nil, err
	}
	d.ParameterNames = make([]string, 0, paramsSize)
	for i := uint32(0); i < paramsSize; i++ {
		name, err := l.optString(r)
		if err != nil {
			return nil, err
		}
		d.ParameterNames = append(d.ParameterNames, name)
	}

	for {
		b, err := r.u8()
		if err != nil {
			return nil, err
		}
		insn := DebugInstruction{Opcode: DebugOpcode(b)}
		switch insn.Opcode {
		case DbgEndSequence:
			d.Bytecode = append(d.Bytecode, insn)
			return d, nil
		case DbgAdvancePC:
			insn.AddrDiff, err = r.uleb128()
		case DbgAdvanceLine:
			insn.LineDiff, err = r.sleb128()
		case DbgStartLocal, DbgStartLocalExtended:
			if insn.Register, err = r.uleb128(); err != nil {
				return nil, err
			}
			if insn.Name, err = l.optString(r); err != nil {
				return nil, err
			}
			if insn.Type, err = l.optType(r); err != nil {
				return nil, err
			}
			if insn.Opcode == DbgStartLocalExtended {
				insn.Signature, err = l.optString(r)
			}
		case DbgEndLocal, DbgRestartLocal:
			insn.Register, err = r.uleb128()
		case DbgSetPrologueEnd, DbgSetEpilogueBegin:
		case DbgSetFile:
			insn.File, err = l.optString(r)
		default:
			adj := int32(b - uint8(DbgFirstSpecial))
			insn.LineDiff = dbgLineBase + adj%dbgLineRange
			insn.AddrDiff = uint32(adj / dbgLineRange)
		}
		if err != nil {
			return nil, err
		}
		d.Bytecode = append(d.Bytecode, insn)
	}
}

// optString reads a uleb128p1 string index where -1 means absent.
func (l *linker) optString(r *reader) (string, error) {
	idx, err := r.uleb128p1()
	if err != nil || idx == -1 {
		return "", err
	}
	return l.string(uint32(idx))
}

func (l *linker) optType(r *reader) (string, error) {
	idx, err := r.uleb128p1()
	if err != nil || idx == -1 {
		return "", err
	}
	return l.typ(uint32(idx))
}
