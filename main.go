package main

import "github.com/KaramelBytes/aqdash/cmd"

func main() {
	cmd.Execute()
}
