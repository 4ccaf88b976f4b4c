package main

import "github.com/hidenkeys/frontdesk/cmd"

func main() {
	cmd.Execute()
}
