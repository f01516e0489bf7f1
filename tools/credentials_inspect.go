package main

import (
	"chat-relay/repositories"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// Lists the accounts of a badger credential store without revealing the
// stored secrets.
func main() {
	dbPath := flag.String("db", "./data/credentials", "Path to badger DB")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	users, err := repositories.NewBadgerCredentialRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil))).Load()
	if err != nil {
		log.Fatal(err)
	}
	render(os.Stdout, users)
}

func render(out io.Writer, users map[string]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Username", "Scheme"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(credentialRows(users))
	table.Render()
}

func credentialRows(users map[string]string) [][]string {
	usernames := make([]string, 0, len(users))
	for username := range users {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	rows := make([][]string, 0, len(usernames))
	for _, username := range usernames {
		rows = append(rows, []string{username, scheme(users[username])})
	}
	return rows
}

// scheme names the hash format of a stored password, "plain" for cleartext.
func scheme(stored string) string {
	if strings.HasPrefix(stored, "$") {
		if parts := strings.SplitN(stored[1:], "$", 2); parts[0] != "" {
			return parts[0]
		}
	}
	return "plain"
}
