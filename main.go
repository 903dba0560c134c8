package main

import "github.com/kebairia/wikiops/cmd"

func main() {
	cmd.Execute()
}
