package main

import "github.com/KaramelBytes/exoscope/cmd"

func main() {
	cmd.Execute()
}
