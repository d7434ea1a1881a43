package main

import (
	"os"

	"github.com/adanyl0v/go-task-tracker/internal/app"
)

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustOpenStorage()
	app.MustInitServices()

	code := app.ExecuteCLI()
	app.CloseStorage()
	os.Exit(code)
}
