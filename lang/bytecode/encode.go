package bytecode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mbassey/corvid/lang/value"
)

// EncodeProgram writes p in the on-disk `.spo` format: the program header,
// the executable word stream, then the local symbol table, as a flat
// concatenation of little-endian words. Words are little-endian whatever
// the host byte order, so the layout matches the in-memory representation
// on little-endian hosts.
func EncodeProgram(w io.Writer, p *Program) error {
	bw := bufio.NewWriter(w)

	if err := writeHeader(bw, p.Header); err != nil {
		return err
	}
	for _, word := range p.Code {
		if err := binary.Write(bw, binary.LittleEndian, word); err != nil {
			return fmt.Errorf("bytecode: write code word: %w", err)
		}
	}
	for _, e := range p.Symtab {
		if err := writeSymbolEntry(bw, e); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeHeader(w io.Writer, h Header) error {
	words := [4]Word{h.BodyLen, h.Argc, h.Nregs, h.Sym}
	for _, word := range words {
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return fmt.Errorf("bytecode: write header: %w", err)
		}
	}
	return nil
}

func readHeader(r io.Reader) (Header, error) {
	var words [4]Word
	for i := range words {
		if err := binary.Read(r, binary.LittleEndian, &words[i]); err != nil {
			return Header{}, fmt.Errorf("bytecode: read header: %w", err)
		}
	}
	return Header{BodyLen: words[0], Argc: words[1], Nregs: words[2], Sym: words[3]}, nil
}

// writeSymbolEntry writes one local symbol table entry: a leading long-form
// word (kind in the opcode slot, NUL-terminated name length in the 24-bit
// operand), the name itself NUL-terminated and padded to a word boundary,
// and for FUNCDEF an extra word giving the function body's offset.
func writeSymbolEntry(w io.Writer, e *SymbolEntry) error {
	nameBytes := append([]byte(e.Name), 0)
	padded := wordsForBytes(len(nameBytes)) * 4
	head := MakeLong(Opcode(e.Kind), uint32(len(nameBytes)))
	if err := binary.Write(w, binary.LittleEndian, head); err != nil {
		return fmt.Errorf("bytecode: write symbol header: %w", err)
	}
	buf := make([]byte, padded)
	copy(buf, nameBytes)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("bytecode: write symbol name: %w", err)
	}
	if e.Kind == FUNCDEF {
		if err := binary.Write(w, binary.LittleEndian, e.Offset); err != nil {
			return fmt.Errorf("bytecode: write funcdef offset: %w", err)
		}
	}
	return nil
}

func readSymbolEntry(r io.Reader) (*SymbolEntry, error) {
	var head Word
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("bytecode: read symbol header: %w", err)
	}
	opWord, nameLen := DecodeLong(head)
	kind := SymKind(opWord)

	padded := wordsForBytes(int(nameLen)) * 4
	buf := make([]byte, padded)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("bytecode: read symbol name: %w", err)
	}
	if int(nameLen) == 0 || int(nameLen) > len(buf) || buf[nameLen-1] != 0 {
		return nil, fmt.Errorf("bytecode: malformed symbol entry: length field does not match NUL-terminated name")
	}
	name := string(buf[:nameLen-1])

	e := &SymbolEntry{Kind: kind, Name: name}
	switch kind {
	case STRCONST:
		e.value = value.NewString(name)
		e.resolved = true
	case SYMSTUB:
		// left unresolved; the VM resolves it on first LDSYM.
	case FUNCDEF:
		if err := binary.Read(r, binary.LittleEndian, &e.Offset); err != nil {
			return nil, fmt.Errorf("bytecode: read funcdef offset: %w", err)
		}
	default:
		return nil, fmt.Errorf("bytecode: invalid symbol kind %d", kind)
	}
	return e, nil
}

// DecodeProgram reads a program back from its `.spo` on-disk form.
func DecodeProgram(r io.Reader) (*Program, error) {
	br := bufio.NewReader(r)

	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	code := make([]Word, hdr.BodyLen)
	for i := range code {
		if err := binary.Read(br, binary.LittleEndian, &code[i]); err != nil {
			return nil, fmt.Errorf("bytecode: read code word %d: %w", i, err)
		}
	}

	var symtab []*SymbolEntry
	for uint32(len(symtab)) < hdr.Sym {
		e, err := readSymbolEntry(br)
		if err != nil {
			return nil, fmt.Errorf("bytecode: read symbol %d: %w", len(symtab), err)
		}
		symtab = append(symtab, e)
	}

	return &Program{Header: hdr, Code: code, Symtab: symtab}, nil
}
