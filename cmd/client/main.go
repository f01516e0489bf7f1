package main

import (
	"bufio"
	"chat-relay/client"
	"chat-relay/protocol"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:8080"`
	Username      string `env:"CHAT_USERNAME,required=true"`
	Password      string `env:"CHAT_PASSWORD,required=true"`
	Register      bool   `env:"CHAT_REGISTER,default=false"`
	LogLevel      string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connect and authenticate.
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	c, err := client.Dial(dialCtx, config.ServerAddress, log)
	cancel()
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()

	authenticate := c.Login
	if config.Register {
		authenticate = c.Register
	}
	greeting, err := authenticate(config.Username, config.Password)
	if err != nil {
		return exitRuntime, err
	}
	fmt.Println(color.Green.Render(greeting))
	fmt.Println("Type a message to broadcast, /msg <user> <text> to whisper, /quit to leave.")

	// 4. Reception loop, ends when the server closes the connection.
	received := make(chan error, 1)
	go func() {
		received <- receiveLoop(c, os.Stdout)
	}()

	// 5. Stdin loop, ends on /quit or EOF.
	go sendLoop(c, os.Stdin, stop)

	select {
	case <-ctx.Done():
		_ = c.Quit()
		return exitOK, nil
	case err := <-received:
		if err != nil && !errors.Is(err, io.EOF) {
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}
		return exitOK, nil
	}
}

func receiveLoop(c *client.Client, out io.Writer) error {
	for {
		msg, err := c.Receive()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render(msg, time.Now()))
	}
}

func render(msg protocol.Message, at time.Time) string {
	line := protocol.Format(msg, at)
	switch msg.Kind() {
	case protocol.KindPrivate:
		return color.Magenta.Render(line)
	case protocol.KindServerNotice:
		return color.Cyan.Render(line)
	case protocol.KindError, protocol.KindAuthFailure:
		return color.Red.Render(line)
	default:
		return line
	}
}

func sendLoop(c *client.Client, in io.Reader, stop func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd, err := parseInput(scanner.Text())
		if err != nil {
			fmt.Println(color.Yellow.Render(err.Error()))
			continue
		}
		if err := cmd.send(c); err != nil {
			fmt.Println(color.Red.Render(err.Error()))
			stop()
			return
		}
		if cmd.quit {
			return
		}
	}
	_ = c.Quit()
}
