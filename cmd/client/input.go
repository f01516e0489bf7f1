package main

import (
	"chat-relay/client"
	"fmt"
	"strings"
)

type command struct {
	target string
	body   string
	quit   bool
	skip   bool
}

// parseInput turns a typed line into a command. Plain text is a broadcast,
// "/msg <user> <text>" a private message and "/quit" a disconnect.
func parseInput(line string) (command, error) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return command{skip: true}, nil
	case trimmed == "/quit" || trimmed == "/exit":
		return command{quit: true}, nil
	case strings.HasPrefix(trimmed, "/msg"):
		fields := strings.SplitN(trimmed, " ", 3)
		if len(fields) < 3 || strings.TrimSpace(fields[2]) == "" {
			return command{}, fmt.Errorf("usage: /msg <user> <text>")
		}
		return command{target: fields[1], body: strings.TrimSpace(fields[2])}, nil
	case strings.HasPrefix(trimmed, "/"):
		return command{}, fmt.Errorf("unknown command %s", strings.Fields(trimmed)[0])
	default:
		return command{body: line}, nil
	}
}

func (cmd command) send(c *client.Client) error {
	switch {
	case cmd.skip:
		return nil
	case cmd.quit:
		return c.Quit()
	case cmd.target != "":
		return c.Private(cmd.target, cmd.body)
	default:
		return c.Broadcast(cmd.body)
	}
}
