package main

import "github.com/besnikbelegu/rustbase/cmd"

func main() {
	cmd.Execute()
}
