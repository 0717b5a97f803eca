// backlight manages lighting profiles for ITE 8291 keyboard backlights
package main

import (
	"os"

	"github.com/iiroan/backlight/cmd/backlight/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
