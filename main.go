package main

import "github.com/xvierd/countdown-cli/cmd"

func main() {
	cmd.Execute()
}
