package main

import "github.com/openrace/f1-replay-go/cmd"

func main() {
	cmd.Execute()
}
