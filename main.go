package main

import "github.com/tesoreria-cl/tesoreria/cmd"

func main() {
	cmd.Execute()
}
