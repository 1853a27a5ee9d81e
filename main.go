package main

import "github.com/bukodent/presu/cmd"

func main() {
	cmd.Execute()
}
