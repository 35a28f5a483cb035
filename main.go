// main.go - Cyder entry point: resource fork parsing, segment loading,
// and the boot sequence wiring every manager into the CPU Host's trap
// surface, ending in the ebiten-driven host loop.
//
// Grounded on the reference's main.go (ASCII banner, manual os.Args
// scan with os.Exit(1) on error, sequential subsystem construction)
// adapted from its -ie32/-m68k CPU-mode switch to Cyder's single
// 68000 boot path plus a -system file and -v verbosity switch.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

func boilerPlate() {
	fmt.Println(`
   ____            _
  / ___|   _  __| | ___ _ __
 | |  | | | |/ _` + "`" + ` |/ _ \ '__|
 | |__| |_| | (_| |  __/ |
  \____\__, |\__,_|\___|_|
       |___/`)
	fmt.Println("\nA classic Macintosh Toolbox/OS emulator for 68000 application CODE resources.")
	fmt.Println("Usage: cyder [-system file] [-v] filename")
}

var verbose bool

func vlog(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

func main() {
	boilerPlate()

	systemFilePath := flag.String("system", "", "path to a System resource file providing shared/ROM resources")
	flag.BoolVar(&verbose, "v", false, "log boot and trap-dispatch progress")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: cyder [-system file] [-v] filename")
		os.Exit(1)
	}
	appPath := flag.Arg(0)

	appRaw, err := os.ReadFile(appPath)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", appPath, err)
		os.Exit(1)
	}
	appFile, err := ParseResourceFile(appRaw)
	if err != nil {
		fmt.Printf("Failed to parse resource fork of %s: %v\n", appPath, err)
		os.Exit(1)
	}

	var systemFile *ResourceFile
	if *systemFilePath != "" {
		sysRaw, err := os.ReadFile(*systemFilePath)
		if err != nil {
			fmt.Printf("Failed to read %s: %v\n", *systemFilePath, err)
			os.Exit(1)
		}
		systemFile, err = ParseResourceFile(sysRaw)
		if err != nil {
			fmt.Printf("Failed to parse resource fork of %s: %v\n", *systemFilePath, err)
			os.Exit(1)
		}
	}

	mm := NewMemoryMap(512*1024, 4*1024)
	mem := NewMemoryManager(mm)
	resources := NewResourceManager(mem, appFile, systemFile)
	segments := NewSegmentLoader(mm, mem, resources)

	initialPC, err := segments.Boot()
	if err != nil {
		fmt.Printf("Failed to boot segment 0: %v\n", err)
		os.Exit(1)
	}
	vlog("[boot] segment 0 loaded, initial pc=%#x\n", initialPC)

	core := NewReferenceCore(mm)
	host := NewCPUHost(core, mm)
	host.Boot(uint32(initialPC))

	events := NewEventQueue()
	screen := NewBitmapImage(512, 384)
	port := NewPortManager(screen)
	windows := NewWindowManager(port, screen, events)
	menus := NewMenuManager(screen, events)
	dialogs := NewDialogManager(windows, events, screen)

	dispatcher := NewTrapDispatcher(host, mm, mem, resources, segments, events, windows, menus, dialogs, port, screen)
	host.RegisterATrapHandler(dispatcher.HandleATrap)
	dispatcher.InstallExitRoutine(uint32(mm.AboveA5End()))

	loop := NewHostLoop(host, dispatcher, events, screen)

	ebiten.SetWindowSize(screen.Width*2, screen.Height*2)
	ebiten.SetWindowTitle(fmt.Sprintf("Cyder - %s", appPath))
	ebiten.SetWindowResizable(true)
	if err := ebiten.RunGame(loop); err != nil {
		fmt.Printf("Run ended: %v\n", err)
		os.Exit(1)
	}
}
