// cmd/disasm/main.go - standalone disassembly CLI for CODE resources.
//
// Grounded on the reference's cmd/ie32to64/main.go (flag-driven
// single-input-file CLI, self-contained package separate from the
// root binary). Disassembly goes through the real
// github.com/Urethramancer/m68k/disassembler package rather than
// Cyder's own reference core: the interpreter is a separate
// collaborator and this tool is the one place that collaborator's
// disassembly output is exercised. The resource-fork
// reader here is a minimal standalone re-reading of the same format
// resourcefile.go parses (a CLI package can't import the root
// package main), trimmed to just what locating CODE resources needs.

package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/Urethramancer/m68k/disassembler"
	"golang.org/x/term"
)

const macBinaryHeaderSize = 128

func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func isMacBinary(header []byte) bool {
	if len(header) < macBinaryHeaderSize {
		return false
	}
	if header[0] != 0 || header[74] != 0 || header[82] != 0 {
		return false
	}
	want := uint16(header[124])<<8 | uint16(header[125])
	return crc16XModem(header[:124]) == want
}

func macBinaryResourceForkLength(header []byte) uint32 {
	return uint32(header[83])<<24 | uint32(header[84])<<16 | uint32(header[85])<<8 | uint32(header[86])
}

func be32(b []byte, offset int) uint32 {
	return uint32(b[offset])<<24 | uint32(b[offset+1])<<16 | uint32(b[offset+2])<<8 | uint32(b[offset+3])
}

func be16(b []byte, offset int) uint16 {
	return uint16(b[offset])<<8 | uint16(b[offset+1])
}

type codeResource struct {
	id   int16
	data []byte
}

// findCodeResources walks a raw resource fork's map block (stripping a
// MacBinary II wrapper first, if present) and returns every 'CODE'
// resource, sorted by id.
func findCodeResources(raw []byte) ([]codeResource, error) {
	if len(raw) >= macBinaryHeaderSize && isMacBinary(raw[:macBinaryHeaderSize]) {
		length := int(macBinaryResourceForkLength(raw[:macBinaryHeaderSize]))
		end := macBinaryHeaderSize + length
		if end > len(raw) {
			return nil, fmt.Errorf("macbinary rsrc_length %d exceeds file size", length)
		}
		raw = raw[macBinaryHeaderSize:end]
	}
	if len(raw) < 16 {
		return nil, fmt.Errorf("resource fork too small for header (%d bytes)", len(raw))
	}

	dataOffset := be32(raw, 0)
	mapOffset := be32(raw, 4)
	if int(mapOffset) >= len(raw) {
		return nil, fmt.Errorf("map offset %#x exceeds file size", mapOffset)
	}
	mapBlock := raw[mapOffset:]

	const mapPreambleSize = 16 + 4 + 2 + 2
	typeListOffset := be16(mapBlock, mapPreambleSize)
	typeCountMinusOne := be16(mapBlock, mapPreambleSize+4)
	typeCount := int(typeCountMinusOne) + 1
	if typeCountMinusOne == 0xFFFF {
		typeCount = 0
	}

	var out []codeResource
	typeListStart := int(typeListOffset)
	for i := 0; i < typeCount; i++ {
		entryOffset := typeListStart + 2 + i*8
		typeVal := be32(mapBlock, entryOffset)
		if typeVal != 0x434F4445 { // "CODE"
			continue
		}
		countMinusOne := be16(mapBlock, entryOffset+4)
		refListOffset := be16(mapBlock, entryOffset+6)
		count := int(countMinusOne) + 1

		for j := 0; j < count; j++ {
			refOffset := typeListStart + int(refListOffset) + j*12
			id := be16(mapBlock, refOffset)
			attrAndOffset := be32(mapBlock, refOffset+4)
			dataRelOffset := attrAndOffset & 0x00FFFFFF

			dataAbsOffset := int(dataOffset) + int(dataRelOffset)
			size := be32(raw, dataAbsOffset)
			data := make([]byte, size)
			copy(data, raw[dataAbsOffset+4:dataAbsOffset+4+int(size)])
			out = append(out, codeResource{id: int16(id), data: data})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

func main() {
	outFile := flag.String("o", "", "output file (default: stdout)")
	resID := flag.Int("id", -1, "disassemble only the CODE resource with this id (default: all)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: disasm [options] input.rsrc\n\nDisassembles CODE resources from a classic Mac resource fork.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	codeResources, err := findCodeResources(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(codeResources) == 0 {
		fmt.Fprintf(os.Stderr, "no CODE resources found in %s\n", inputPath)
		os.Exit(1)
	}

	out := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	interactive := *outFile == "" && term.IsTerminal(int(os.Stdout.Fd()))

	for _, res := range codeResources {
		if *resID >= 0 && int(res.id) != *resID {
			continue
		}
		text, err := disassembler.Disassemble(res.data)
		if err != nil {
			fmt.Fprintf(out, "; CODE(%d): disassembly failed: %v\n", res.id, err)
			continue
		}
		if interactive {
			fmt.Fprintf(out, "\n=== CODE(%d) [%d bytes] ===\n", res.id, len(res.data))
		} else {
			fmt.Fprintf(out, "; CODE(%d) [%d bytes]\n", res.id, len(res.data))
		}
		fmt.Fprintln(out, text)
	}
}
