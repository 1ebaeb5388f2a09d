package main

import (
	"log"

	"github.com/summitlog/summitlog"
)

func main() {
	cfg, err := summitlog.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	app := summitlog.New(cfg, summitlog.ViewFuncs{})
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
