package main

import "github.com/willsigmon/boppa/cmd"

func main() {
	cmd.Execute()
}
