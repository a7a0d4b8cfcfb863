package main

import "github.com/Illustar0/oneMonitor/internal/cli"

func main() {
	cli.Execute()
}
