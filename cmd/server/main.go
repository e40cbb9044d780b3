package main

import "shiftswap/internal/app/server"

func main() {
	server.Run()
}
