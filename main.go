package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	levelName := flag.String("level", "showcase", "level name in levels/ (basename, .json optional)")
	character := flag.String("character", "player.yaml", "character prefab in prefabs/")
	debug := flag.Bool("debug", false, "log grounding events")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	w, h := ebiten.Monitor().Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("footing")

	game, err := NewGame(*levelName, *character, *debug)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
