package main

import "github.com/OpenTraceLab/OpenTraceKeypad/cmd/keypad/cmd"

func main() {
	cmd.Execute()
}
