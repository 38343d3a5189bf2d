package main

import "github.com/Tiliavir/paymo-paybot/cmd"

func main() {
	cmd.Execute()
}
