package main

import (
	"math/rand"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/kiosk404/roundtable/internal/chamber"
)

func main() {
	rand.New(rand.NewSource(time.Now().UTC().UnixNano()))

	chamber.NewApp("roundtable").Run()
}
