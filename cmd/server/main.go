package main

import (
	"github.com/sirupsen/logrus"

	"socialhub/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		logrus.WithError(err).Fatal("Server failed")
	}
}
