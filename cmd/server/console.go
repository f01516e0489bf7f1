package main

import (
	"bufio"
	"chat-relay/observability"
	"chat-relay/runtime"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type relay interface {
	Addr() net.Addr
	State() runtime.State
	Stats() observability.ServerStats
	Usernames() []string
	Kick(username string) bool
}

// console is the operator prompt on stdin.
type console struct {
	in    io.Reader
	out   io.Writer
	relay relay
	stop  func()
	// sample is swapped in tests
	sample func() (observability.ProcessStats, error)
}

func newConsole(in io.Reader, out io.Writer, relay relay, stop func()) *console {
	return &console{in: in, out: out, relay: relay, stop: stop, sample: observability.ReadProcessStats}
}

// Run reads commands until stdin closes or the stop command is entered.
func (c *console) Run() {
	c.banner()
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if !c.execute(scanner.Text()) {
			return
		}
	}
}

// execute runs one command line and reports whether to keep reading.
func (c *console) execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		c.help()
	case "stats":
		c.stats()
	case "clients", "who":
		c.clients()
	case "kick":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, color.Yellow.Render("usage: kick <username>"))
			return true
		}
		if c.relay.Kick(fields[1]) {
			fmt.Fprintf(c.out, "%s has been disconnected\n", fields[1])
		} else {
			fmt.Fprintln(c.out, color.Yellow.Render(fmt.Sprintf("%s is not online", fields[1])))
		}
	case "stop", "quit", "exit":
		fmt.Fprintln(c.out, color.Red.Render("Stopping relay..."))
		c.stop()
		return false
	default:
		fmt.Fprintln(c.out, color.Yellow.Render(fmt.Sprintf("unknown command %q, type help", fields[0])))
	}
	return true
}

func (c *console) banner() {
	address := "-"
	if addr := c.relay.Addr(); addr != nil {
		address = addr.String()
	}
	header := fmt.Sprintf("  ====== chat relay listening on %s ======", address)
	fmt.Fprintln(c.out, color.New(color.BgBlack, color.FgGreen).Render(header))
	c.help()
}

func (c *console) help() {
	fmt.Fprintln(c.out, "Commands: stats, clients, kick <username>, stop, help")
}

func (c *console) stats() {
	stats := c.relay.Stats()
	table := newTable(c.out)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"State", c.relay.State().String()})
	table.Append([]string{"Uptime", stats.Uptime(time.Now().UTC()).String()})
	table.Append([]string{"Online users", fmt.Sprint(stats.Online)})
	table.Append([]string{"Registered users", fmt.Sprint(stats.RegisteredUsers)})
	table.Append([]string{"Total connections", humanize.Comma(int64(stats.TotalConnections))})
	table.Append([]string{"Messages routed", humanize.Comma(int64(stats.TotalMessages))})
	table.Append([]string{"Failed logins", fmt.Sprint(stats.FailedLogins)})
	if proc, err := c.sample(); err == nil {
		table.Append([]string{"Memory (RSS)", humanize.IBytes(proc.RSSBytes)})
		table.Append([]string{"CPU", fmt.Sprintf("%.1f%%", proc.CPUPercent)})
		table.Append([]string{"Goroutines", fmt.Sprint(proc.Goroutines)})
	}
	table.Render()
}

func (c *console) clients() {
	usernames := c.relay.Usernames()
	if len(usernames) == 0 {
		fmt.Fprintln(c.out, "No user online")
		return
	}
	table := newTable(c.out)
	table.SetHeader([]string{"#", "Username"})
	for i, username := range usernames {
		table.Append([]string{fmt.Sprint(i + 1), username})
	}
	table.Render()
}

func newTable(out io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
