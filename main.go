package main

import (
	"log"

	"github.com/BRAVO68WEB/hellodock/cmd/hellodock"
)

func main() {
	if err := hellodock.Execute(); err != nil {
		log.Fatal(err)
	}
}
