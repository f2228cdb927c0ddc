package main

import "github.com/Tiliavir/ojt-tracker/cmd"

func main() {
	cmd.Execute()
}
