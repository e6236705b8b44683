package main

import "github.com/example/hotel-booking/cmd"

func main() {
	cmd.Execute()
}
