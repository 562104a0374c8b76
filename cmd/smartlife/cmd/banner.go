package cmd

import (
	"fmt"
)

const banner = `
  ____                       _   _     _  __
 / ___| _ __ ___   __ _ _ __| |_| |   (_)/ _| ___
 \___ \| '_ ` + "`" + ` _ \ / _` + "`" + ` | '__| __| |   | | |_ / _ \
  ___) | | | | | | (_| | |  | |_| |___| |  _|  __/
 |____/|_| |_| |_|\__,_|_|   \__|_____|_|_|  \___|

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Smart Life Local Controller - Version %s\x1b[0m\n\n", Version)
}
