package main

import "burnlink_backend/internal/app"

func main() {
	app.Run()
}
