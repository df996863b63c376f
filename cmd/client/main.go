package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"

	"github.com/dmitrijs2005/cryptowallet/internal/client/cli"
)

func main() {

	addr := flag.String("a", "localhost:7777", "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Printf("connecting to %s: %v", *addr, err)
		return
	}
	defer conn.Close()

	app := cli.NewApp(conn, os.Stdin, os.Stdout)
	if err := app.Run(context.Background()); err != nil {
		log.Printf("%v", err)
	}

}
