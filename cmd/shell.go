package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/glefebvre/moviedesk/internal/filter"
	"github.com/glefebvre/moviedesk/internal/models"
)

const shellHelp = `Commands:
  list                     show movies matching the current search and sort
  search [text]            filter titles, no text clears the filter
  sort id|year|rating      change the display order
  set <field> <value>      fill a draft field (id, title, director, year, genre, rating, duration)
  draft                    show the draft being edited
  edit <id>                load a movie into the draft for updating
  submit                   add or update the draft
  cancel                   discard the draft
  delete <id>              delete a movie
  get <id>                 look a movie up
  refresh                  refetch every movie
  stats                    show backend request metrics
  help                     show this help
  quit                     leave the shell`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Manage movies interactively",
	Long: `Start an interactive session on the movie list. Type 'help' for the list of
commands. Ctrl-C or end of input ends the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		s := &shell{app: a, out: cmd.OutOrStdout(), prompt: isTerminal(cmd.InOrStdin())}
		return s.run(cmd.Context(), cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type shell struct {
	app    *app
	out    io.Writer
	prompt bool
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.print(s.app.manager.Start(ctx).Text)

	lines := readLines(ctx, in)

	for {
		if s.prompt {
			fmt.Fprint(s.out, "moviedesk> ")
		}

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		if quit := s.exec(ctx, line); quit {
			return nil
		}
	}
}

// readLines streams the lines of in until it is exhausted or ctx is done
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// exec runs one shell line and reports whether the session should end
func (s *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	command, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
	m := s.app.manager

	switch command {
	case "list", "ls":
		renderTable(s.out, m.FilteredSorted(), len(m.Snapshot().Movies))

	case "search":
		m.SetSearch(rest)

	case "sort":
		key, err := filter.ParseSortKey(rest)
		if err != nil {
			s.print(err.Error())
			return false
		}
		m.SetSort(key)

	case "set":
		if len(args) < 1 {
			s.print("usage: set <field> <value>")
			return false
		}
		f, err := models.ParseField(args[0])
		if err != nil {
			s.print(err.Error())
			return false
		}
		m.SetField(f, strings.TrimSpace(strings.TrimPrefix(rest, args[0])))

	case "draft":
		renderDraft(s.out, m.Snapshot())

	case "edit":
		id, ok := s.id(args)
		if !ok {
			return false
		}
		for _, movie := range m.Snapshot().Movies {
			if movie.ID == id {
				s.print(m.BeginEdit(movie).Text)
				return false
			}
		}
		if msg := m.FetchByID(ctx, id); !msg.IsZero() {
			s.print(msg.Text)
			return false
		}
		s.print(m.BeginEdit(*m.Lookup()).Text)

	case "submit":
		s.print(m.SubmitDraft(ctx).Text)

	case "cancel":
		m.Cancel()

	case "delete", "rm":
		if id, ok := s.id(args); ok {
			s.print(m.DeleteRecord(ctx, id).Text)
		}

	case "get":
		id, ok := s.id(args)
		if !ok {
			return false
		}
		if msg := m.FetchByID(ctx, id); !msg.IsZero() {
			s.print(msg.Text)
			return false
		}
		renderCard(s.out, *m.Lookup())

	case "refresh":
		if msg := m.LoadAll(ctx); msg.IsError() || msg.IsWarning() {
			s.print(msg.Text)
		}

	case "stats":
		if s.app.recorder == nil {
			s.print("metrics are disabled")
			return false
		}
		if err := s.app.recorder.WriteText(s.out); err != nil {
			s.print(err.Error())
		}

	case "help", "?":
		s.print(shellHelp)

	case "quit", "exit":
		return true

	default:
		s.print(fmt.Sprintf("unknown command '%s', type 'help' for the list of commands", command))
	}
	return false
}

func (s *shell) id(args []string) (int, bool) {
	if len(args) != 1 {
		s.print("a movie id is required")
		return 0, false
	}
	id, err := parseID(args[0])
	if err != nil {
		s.print(err.Error())
		return 0, false
	}
	return id, true
}

func (s *shell) print(text string) {
	if text != "" {
		fmt.Fprintln(s.out, text)
	}
}
