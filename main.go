package main

import "github.com/geosim/trafficdatasim/cmd"

func main() {
	cmd.Execute()
}
