package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/snaprec/snaprec/store"
)

// runShell is the interactive loop started when snaprec runs without a
// subcommand: list, run <name> [k=v ...], reload, quit.
func runShell(cfg *config) error {
	s := &shell{
		cfg:        cfg,
		store:      store.New(cfg.recipesPath, cfg.logger),
		collection: store.Collection{},
	}
	if err := s.reload(); err != nil {
		// A corrupt document should not lock the operator out of the
		// shell; report it and start empty.
		fmt.Println(errorText(err.Error()))
	}

	fmt.Println(consoleText("commands: list, run <name> [placeholder=value ...], reload, quit"))
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(headerText("snaprec> "))
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		quit, err := s.dispatch(line)
		if err != nil {
			fmt.Println(errorText(err.Error()))
		}
		if quit {
			return nil
		}
	}
}

type shell struct {
	cfg        *config
	store      *store.Store
	collection store.Collection
}

func (s *shell) reload() error {
	c, err := s.store.Load()
	if err != nil {
		s.collection = store.Collection{}
		return err
	}
	s.collection = c
	return nil
}

func (s *shell) dispatch(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "list":
		printRecipes(s.collection)
		return false, nil
	case "reload":
		if err := s.reload(); err != nil {
			return false, err
		}
		fmt.Println(okText(fmt.Sprintf("loaded %d recipes", len(s.collection))))
		return false, nil
	case "run":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: run <name> [placeholder=value ...]")
		}
		values, err := parsePairs(fields[2:])
		if err != nil {
			return false, err
		}
		return false, runRecipe(context.Background(), s.cfg, s.collection, fields[1], values)
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}
