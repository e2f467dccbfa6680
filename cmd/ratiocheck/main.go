package main

import "imageratio/cli"

func main() {
	cli.Execute()
}
