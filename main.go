package main

import "github.com/Mohsinsiddi/tokenforge/cmd"

func main() {
	cmd.Execute()
}
