// traps_text.go - Font Manager / QuickDraw text traps, plus the Scrap
// Manager (clipboard) cluster.
//
// Grounded on emu/trap/trap_dispatcher.cc's text cluster. Font data
// itself is a built-in 8x8 bitmap face; FONT resources are not read.
// Scrap Manager traps back onto the host clipboard via
// golang.design/x/clipboard, the same library the reference's
// video_backend_ebiten.go uses for paste.

package main

import (
	"sync"

	"golang.design/x/clipboard"
)

func registerTextTraps(d *TrapDispatcher) {
	d.RegisterToolbox(0x0C4, "DrawString", trapDrawString)
	d.RegisterToolbox(0x0C5, "DrawChar", trapDrawChar)
	d.RegisterToolbox(0x030, "TextFont", trapTextFont)
	d.RegisterToolbox(0x033, "TextSize", trapTextSize)
	d.RegisterToolbox(0x034, "TextFace", trapTextFace)
	d.RegisterToolbox(0x0BD, "CharWidth", trapCharWidth)
	d.RegisterToolbox(0x0C3, "StringWidth", trapStringWidth)
	d.RegisterToolbox(0x0C2, "GetFontInfo", trapGetFontInfo)

	d.RegisterToolbox(0x1BF, "PutScrap", trapPutScrap)
	d.RegisterToolbox(0x1C0, "ZeroScrap", trapZeroScrap)
	d.RegisterToolbox(0x1C1, "GetScrap", trapGetScrap)
}

// scrapAvailable lazily initializes the host clipboard; clipboard.Init can
// fail in headless test environments, in which case Scrap traps just
// report an empty scrap rather than erroring the whole dispatch.
func scrapAvailable() bool {
	scrapInitOnce.Do(func() { scrapInitErr = clipboard.Init() })
	return scrapInitErr == nil
}

// builtinFontWidth/Height describe the fixed 8x8 system font; every
// glyph occupies one row-major bit-per-pixel cell in builtinFontGlyphs,
// keyed by character code.
const (
	builtinFontWidth  = 8
	builtinFontHeight = 8
	builtinFontFirst  = 0x20
)

// builtinFontGlyphs is empty, so glyphFor draws every non-space
// character as the same box placeholder — DITL static-text drawing
// only needs legible placeholders, not a faithful Chicago rendition.
var builtinFontGlyphs = map[byte][builtinFontHeight]byte{}

func glyphFor(ch byte) [builtinFontHeight]byte {
	if g, ok := builtinFontGlyphs[ch]; ok {
		return g
	}
	if ch == ' ' {
		return [builtinFontHeight]byte{}
	}
	return [builtinFontHeight]byte{0x7E, 0x81, 0x81, 0x81, 0x81, 0x81, 0x81, 0x7E}
}

// drawGlyph sets the pixels of one glyph's 1-bits to black at (x,y) in
// global coordinates; 0-bits leave the destination unchanged and pat is
// not consulted.
func drawGlyph(b *BitmapImage, x, y int16, ch byte, pat Pattern) {
	glyph := glyphFor(ch)
	for row := 0; row < builtinFontHeight; row++ {
		bits := glyph[row]
		for col := 0; col < builtinFontWidth; col++ {
			if bits&(0x80>>uint(col)) != 0 {
				b.setBit(int(x)+col, int(y)+row, 1)
			}
		}
	}
	_ = pat // pattern support reserved for non-solid-ink text, unused by the builtin face
}

// trapDrawString: PROCEDURE DrawString(s: Str255). Draws starting at
// the port's current PenLoc and advances PenLoc by the string's width,
// per QuickDraw's DrawText convention.
func trapDrawString(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	s, err := readPascalString(d.mm, ptr)
	if err != nil {
		return err
	}
	port := currentPort(d)
	pt := port.LocalToGlobal(port.PenLoc)
	for i := 0; i < len(s); i++ {
		drawGlyph(d.screen, pt.H, pt.V-builtinFontHeight, s[i], port.PenPattern)
		pt.H += builtinFontWidth
	}
	port.PenLoc.H += int16(len(s) * builtinFontWidth)
	return nil
}

// trapDrawChar: PROCEDURE DrawChar(ch: CHAR).
func trapDrawChar(d *TrapDispatcher) error {
	ch, err := popStackInt[uint8](d)
	if err != nil {
		return err
	}
	port := currentPort(d)
	pt := port.LocalToGlobal(port.PenLoc)
	drawGlyph(d.screen, pt.H, pt.V-builtinFontHeight, ch, port.PenPattern)
	port.PenLoc.H += builtinFontWidth
	return nil
}

func trapTextFont(d *TrapDispatcher) error {
	font, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	currentPort(d).TextFont = font
	return nil
}

func trapTextSize(d *TrapDispatcher) error {
	size, err := popStackInt[int16](d)
	if err != nil {
		return err
	}
	currentPort(d).TextSize = size
	return nil
}

func trapTextFace(d *TrapDispatcher) error {
	face, err := popStackInt[uint8](d)
	if err != nil {
		return err
	}
	currentPort(d).TextFace = face
	return nil
}

// trapCharWidth: FUNCTION CharWidth(ch: CHAR): INTEGER.
func trapCharWidth(d *TrapDispatcher) error {
	_, err := popStackInt[uint8](d)
	if err != nil {
		return err
	}
	return trapReturn(d, int16(builtinFontWidth))
}

// trapStringWidth: FUNCTION StringWidth(s: Str255): INTEGER.
func trapStringWidth(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	s, err := readPascalString(d.mm, ptr)
	if err != nil {
		return err
	}
	return trapReturn(d, int16(len(s)*builtinFontWidth))
}

// trapGetFontInfo: PROCEDURE GetFontInfo(VAR info: FontInfo), where
// FontInfo is {ascent, descent, widMax, leading: INTEGER}.
func trapGetFontInfo(d *TrapDispatcher) error {
	ptr, err := popPtr(d)
	if err != nil {
		return err
	}
	vals := []int16{builtinFontHeight - 1, 1, builtinFontWidth, 0}
	for i, v := range vals {
		if err := d.mm.WriteUint16(ptr+i*2, uint16(v)); err != nil {
			return err
		}
	}
	return nil
}

var (
	scrapInitOnce sync.Once
	scrapInitErr  error
)

// trapZeroScrap: FUNCTION ZeroScrap: OSErr. Clears the host clipboard's
// text contents, matching the classic Scrap Manager's "start a new
// PutScrap sequence" semantics (this trap set only ever accumulates a
// single text scrap, never multiple typed scraps in one call).
func trapZeroScrap(d *TrapDispatcher) error {
	if scrapAvailable() {
		clipboard.Write(clipboard.FmtText, nil)
	}
	return trapReturn(d, uint16(0))
}

// trapPutScrap: FUNCTION PutScrap(length: LongInt; theType: ResType;
// source: Ptr): OSErr. Only 'TEXT' scraps are backed by the host
// clipboard; other types are silently accepted and dropped, since
// nothing in this trap set reads them back by type.
func trapPutScrap(d *TrapDispatcher) error {
	srcPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	rawType, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	length, err := popStackInt[int32](d)
	if err != nil {
		return err
	}
	if osTypeFromUint32(rawType) == "TEXT" && scrapAvailable() {
		buf := make([]byte, length)
		for i := 0; i < int(length); i++ {
			b, err := d.mm.ReadUint8(srcPtr + i)
			if err != nil {
				return err
			}
			buf[i] = b
		}
		clipboard.Write(clipboard.FmtText, buf)
	}
	return trapReturn(d, uint16(0))
}

// trapGetScrap: FUNCTION GetScrap(hDest: Handle; theType: ResType; VAR
// offset: LongInt): LongInt. Writes the host clipboard's text at the
// start of the destination handle's existing block (the handle is not
// resized) and returns the byte count read (the
// classic trap's LongInt result), or 0 for any non-'TEXT' request.
func trapGetScrap(d *TrapDispatcher) error {
	offsetPtr, err := popPtr(d)
	if err != nil {
		return err
	}
	rawType, err := popStackInt[uint32](d)
	if err != nil {
		return err
	}
	destHandle, err := popPtr(d)
	if err != nil {
		return err
	}
	if osTypeFromUint32(rawType) != "TEXT" || !scrapAvailable() {
		return trapReturn(d, uint32(0))
	}
	data := clipboard.Read(clipboard.FmtText)
	region, err := d.mem.RegionFor(destHandle)
	if err != nil {
		return trapReturn(d, uint32(0))
	}
	if err := region.WriteBytes(0, data); err != nil {
		return err
	}
	if err := d.mm.WriteUint32(offsetPtr, 0); err != nil {
		return err
	}
	return trapReturn(d, uint32(len(data)))
}
