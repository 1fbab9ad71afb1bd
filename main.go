package main

import "github.com/dzjyyds666/polyprops/cmd"

func main() {
	cmd.Execute()
}
