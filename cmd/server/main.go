package main

import "apas/internal/app/server"

func main() {
	server.Run()
}
