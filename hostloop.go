// hostloop.go - the host frame loop: an ebiten.Game driving the CPU
// Host's timeslices, forwarding host input into the Event Queue, and
// blitting the 1-bpp QuickDraw raster to the screen.
//
// Grounded on the reference's video_backend_ebiten.go (RunGame-driven
// Update()/Draw()/Layout(), inpututil key polling, clipboard paste)
// adapted from an RGBA multi-chip video output to a 1bpp raster source.

package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"
)

// cyclesPerFrame is the ~100k-instructions-per-frame quantum used for
// run_timeslice.
const cyclesPerFrame = 100_000

// HostLoop implements ebiten.Game, owning the one cooperative-scheduling
// surface between the 68000 interpreter and host input/video.
type HostLoop struct {
	host       *CPUHost
	dispatcher *TrapDispatcher
	events     *EventQueue
	screen     *BitmapImage

	rgba      *image.RGBA
	display   *ebiten.Image
	prevMouse Point
}

// NewHostLoop wires a HostLoop over an already-booted CPUHost/
// TrapDispatcher/EventQueue/BitmapImage quartet.
func NewHostLoop(host *CPUHost, dispatcher *TrapDispatcher, events *EventQueue, screen *BitmapImage) *HostLoop {
	return &HostLoop{
		host: host, dispatcher: dispatcher, events: events, screen: screen,
		rgba: image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height)),
	}
}

// Update runs one frame's worth of host input draining plus one 68000
// timeslice under a single-threaded cooperative model: the frame loop
// is the only caller of run_timeslice, and the pending native function
// it triggers (trap dispatch) runs synchronously here.
func (hl *HostLoop) Update() error {
	if ebiten.IsWindowBeingClosed() {
		hl.dispatcher.RequestQuit()
	}
	hl.pollMouse()
	hl.pollKeyboard()
	if err := hl.host.RunTimeslice(cyclesPerFrame); err != nil {
		return err
	}
	if hl.dispatcher.QuitRequested() {
		return ebiten.Termination
	}
	return nil
}

// pollMouse posts mouseDown/mouseUp/mouseMove EventRecords from
// ebiten's cursor state into the Event Queue's input lane.
func (hl *HostLoop) pollMouse() {
	x, y := ebiten.CursorPosition()
	pt := Point{V: int16(y), H: int16(x)}
	if pt != hl.prevMouse {
		hl.events.Post(EventRecord{What: EvtMouseMove, Where: pt})
		hl.prevMouse = pt
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		hl.events.Post(EventRecord{What: EvtMouseDown, Where: pt})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		hl.events.Post(EventRecord{What: EvtMouseUp, Where: pt})
	}
}

// pollKeyboard posts keyDown EventRecords for printable characters
// typed this frame, mirroring the reference's
// ebiten.AppendInputChars-based input path.
func (hl *HostLoop) pollKeyboard() {
	for _, r := range ebiten.AppendInputChars(nil) {
		if r <= 0 || r > 0xFF {
			continue
		}
		hl.events.Post(EventRecord{What: EvtKeyDown, Message: uint32(byte(r))})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		hl.events.Post(EventRecord{What: EvtKeyDown, Message: uint32('\r')})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		hl.events.Post(EventRecord{What: EvtKeyDown, Message: uint32('\b')})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		hl.events.Post(EventRecord{What: EvtKeyDown, Message: uint32('\t')})
	}
}

// monoPalette renders a 1-bpp BitmapImage as an image.Image so
// golang.org/x/image/draw can scale/convert it; 1 is black, matching
// QuickDraw's raster convention.
type monoPalette struct {
	bmp *BitmapImage
}

func (m monoPalette) ColorModel() color.Model { return color.GrayModel }
func (m monoPalette) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.bmp.Width, m.bmp.Height)
}
func (m monoPalette) At(x, y int) color.Color {
	if m.bmp.getBit(x, y) != 0 {
		return color.Black
	}
	return color.White
}

// Draw upconverts the 1-bpp raster into the ebiten.Image backing
// buffer via x/image/draw, then presents it.
func (hl *HostLoop) Draw(screen *ebiten.Image) {
	draw.Draw(hl.rgba, hl.rgba.Bounds(), monoPalette{hl.screen}, image.Point{}, draw.Src)
	if hl.display == nil {
		hl.display = ebiten.NewImage(hl.screen.Width, hl.screen.Height)
	}
	hl.display.WritePixels(hl.rgba.Pix)
	screen.DrawImage(hl.display, nil)
}

// Layout reports the fixed QuickDraw screen dimensions as the logical
// game resolution.
func (hl *HostLoop) Layout(outsideWidth, outsideHeight int) (int, int) {
	return hl.screen.Width, hl.screen.Height
}
