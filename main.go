package main

import "github/chapool/go-near/cmd"

func main() {
	cmd.Execute()
}
