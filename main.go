package main

import (
	"os"

	"github.com/lamaindor/salon-cms/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
