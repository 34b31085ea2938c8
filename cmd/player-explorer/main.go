package main

import (
	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/cmd"
)

func main() {
	cmd.Execute()
}
