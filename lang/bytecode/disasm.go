package bytecode

import (
	"fmt"
	"math"
	"strings"
)

// immediateWords returns the number of words of immediate data that
// follow a standard-form instruction's single instruction word, given its
// decoded operands. It is used by the disassembler; the compiler and the
// VM compute the same instruction lengths inline.
func immediateWords(op Opcode, a, b, c uint8) int {
	switch op {
	case CALL:
		return wordsForBytes(int(c)) // argc register indices, 4 per word
	case JMP, JZE, JNZ:
		return 1 // signed PC-relative offset
	case LDCONST:
		return 2 // int64 or float64 payload, word-aligned
	case FUNCTION:
		return 4 // nested function header: body length, argc, nregs, symtab index
	case GLBVAL:
		return wordsForBytes(int(b)) // NUL-terminated name, length in B
	case CLOSURE:
		return int(b) // N upvalue descriptor words
	default:
		return 0
	}
}

// Disassemble renders p as one instruction per line, in the spirit of a
// traditional bytecode dump: address, mnemonic, decoded operands, and for
// data-carrying instructions the decoded immediate.
func Disassemble(p *Program) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "program: bodylen=%d argc=%d nregs=%d symcount=%d\n",
		p.Header.BodyLen, p.Header.Argc, p.Header.Nregs, p.Header.Sym)

	pc := 0
	for pc < len(p.Code) {
		n := disassembleOne(&sb, p, pc)
		pc += n
	}

	if len(p.Symtab) > 0 {
		sb.WriteString("symtab:\n")
		for i, e := range p.Symtab {
			switch e.Kind {
			case STRCONST:
				fmt.Fprintf(&sb, "\t%03d strconst %q\n", i, e.Name)
			case SYMSTUB:
				fmt.Fprintf(&sb, "\t%03d symstub %q\n", i, e.Name)
			case FUNCDEF:
				fmt.Fprintf(&sb, "\t%03d funcdef %q @%d\n", i, e.Name, e.Offset)
			}
		}
	}
	return sb.String()
}

// disassembleOne writes one instruction's text to sb and returns the total
// number of words it occupies (instruction word plus immediates).
func disassembleOne(sb *strings.Builder, p *Program, pc int) int {
	word := p.Code[pc]
	op, a, b, c := DecodeInst(word)
	n := immediateWords(op, a, b, c)

	switch op {
	case JMP, JZE, JNZ:
		off := int32(p.Code[pc+1])
		fmt.Fprintf(sb, "%04d\t%-8s a=%d target=%d\n", pc, op, a, pc+2+int(off))
	case LDCONST:
		bits := joinUint64(p.Code[pc+1], p.Code[pc+2])
		switch b {
		case 0:
			fmt.Fprintf(sb, "%04d\t%-8s a=%d int=%d\n", pc, op, a, int64(bits))
		case 1:
			fmt.Fprintf(sb, "%04d\t%-8s a=%d float=%g\n", pc, op, a, math.Float64frombits(bits))
		case 2:
			fmt.Fprintf(sb, "%04d\t%-8s a=%d nil\n", pc, op, a)
		case 3:
			fmt.Fprintf(sb, "%04d\t%-8s a=%d bool=%t\n", pc, op, a, bits != 0)
		default:
			fmt.Fprintf(sb, "%04d\t%-8s a=%d b=%d <unknown ldconst subtype>\n", pc, op, a, b)
		}
	case CALL:
		fmt.Fprintf(sb, "%04d\t%-8s dst=%d fn=%d argc=%d\n", pc, op, a, b, c)
	case FUNCTION:
		hdr := p.Code[pc+1 : pc+5]
		fmt.Fprintf(sb, "%04d\t%-8s dst=%d bodylen=%d argc=%d nregs=%d symidx=%d\n",
			pc, op, a, hdr[0], hdr[1], hdr[2], hdr[3])
	case GLBVAL:
		nameBytes := wordsToBytes(p.Code[pc+1 : pc+1+n])[:b]
		fmt.Fprintf(sb, "%04d\t%-8s src=%d name=%q\n", pc, op, a, trimNUL(nameBytes))
	case CLOSURE:
		fmt.Fprintf(sb, "%04d\t%-8s dst=%d n=%d\n", pc, op, a, b)
		for i := 0; i < n; i++ {
			kind, idx := DecodeUpval(p.Code[pc+1+i])
			fmt.Fprintf(sb, "\t\t%s %d\n", kind, idx)
		}
	case LDSYM:
		_, symIdx := DecodeLdsym(word)
		fmt.Fprintf(sb, "%04d\t%-8s dst=%d sym=%d\n", pc, op, a, symIdx)
	default:
		fmt.Fprintf(sb, "%04d\t%-8s a=%d b=%d c=%d\n", pc, op, a, b, c)
	}
	return 1 + n
}

func wordsToBytes(words []Word) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		buf[i*4] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	return buf
}

func trimNUL(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
