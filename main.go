package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ftln/go-threadless-web/log"
	"github.com/ftln/go-threadless-web/webserve"
	"go.uber.org/zap"
)

func main() {
	log.InitLogger()
	defer log.Logger.Sync()

	port := 0
	if len(os.Args) == 2 {
		port, _ = strconv.Atoi(os.Args[1])
	}
	if port == 0 {
		displayHelp()
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Logger.Info("webserver starting", zap.Int("port", port), zap.Int("pid", os.Getpid()))
	w, err := webserve.Start(port)
	if err != nil {
		log.Logger.Fatal("failed to start webserver", zap.Error(err))
	}

	// Block each poll for one second
	w.SetTimeoutUsec(1e6)

	quit := false
	for !quit {
		select {
		case <-sigCh:
			log.Logger.Info("interrupt signal received")
			quit = true
		default:
			quit = w.PollOnce()
		}
	}

	w.Finish()
	log.Logger.Info("webserver closed down")
}

func displayHelp() {
	fmt.Println("Syntax: threadlessweb <port>")
	fmt.Println("Runs a simple webserver that always responds in the same way.")
	fmt.Println("Example: threadlessweb 1337")
}
