package main

import (
	"flag"
	"os"

	"github.com/Abtechguru/veritusblogs-engagement/engageservice"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override ENGAGEMENT_BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	if err := engageservice.Run(*buildTarget); err != nil {
		os.Exit(1)
	}
}
