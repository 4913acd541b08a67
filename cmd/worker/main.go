package main

import (
	"theralink/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	w, err := bootstrap.NewWorker()
	if err != nil {
		logrus.Fatalf("Failed to initialize worker: %v", err)
	}

	if err := w.Run(); err != nil {
		logrus.Fatalf("%v", err)
	}
}
