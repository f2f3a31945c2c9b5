package main

import "github.com/fiffu/vitalwatch/cmd"

func main() {
	cmd.Execute()
}
