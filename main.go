package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/mtmitchel/slate/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to editor config yaml")
	scriptPath := flag.String("script", "", "board script to run at startup")
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 800)
	ebiten.SetWindowTitle("slate")

	app, err := NewApp(*configPath, *scriptPath, *debug)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
