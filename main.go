package main

import "github.com/xvierd/tec-office/cmd"

func main() {
	cmd.Execute()
}
