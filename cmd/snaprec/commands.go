package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/snaprec/snaprec/driver"
	"github.com/snaprec/snaprec/recipe"
	"github.com/snaprec/snaprec/recorder"
	"github.com/snaprec/snaprec/replay"
	"github.com/snaprec/snaprec/store"
)

var (
	headerText  = color.New(color.Bold).SprintFunc()
	okText      = color.New(color.FgGreen).SprintFunc()
	errorText   = color.New(color.FgRed).SprintFunc()
	detailText  = color.New(color.FgHiBlack).SprintFunc()
	consoleText = color.New(color.FgCyan).SprintFunc()
)

func newListCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded recipes",
		RunE: func(*cobra.Command, []string) error {
			c, err := store.New(cfg.recipesPath, cfg.logger).Load()
			if err != nil {
				return err
			}
			printRecipes(c)
			return nil
		},
	}
}

func newRunCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name> [placeholder=value ...]",
		Short: "Replay a recipe against the browser",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := store.New(cfg.recipesPath, cfg.logger).Load()
			if err != nil {
				return err
			}
			values, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			return runRecipe(cmd.Context(), cfg, c, args[0], values)
		},
	}
}

func newRecordCommand(cfg *config) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "record <name>",
		Short: "Record a new recipe from a live browser session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return recordRecipe(cmd.Context(), cfg, args[0], description)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "recipe description")

	return cmd
}

func printRecipes(c store.Collection) {
	if len(c) == 0 {
		fmt.Println(detailText("no recipes recorded yet"))
		return
	}
	for _, name := range c.Names() {
		r := c[name]
		fmt.Printf("%s  %s\n", headerText(name), detailText(r.Description))
		fmt.Printf("    %s\n", detailText(fmt.Sprintf("%d steps, placeholders: %s",
			len(r.Steps), formatPlaceholders(r.Placeholders))))
	}
}

func formatPlaceholders(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// parsePairs parses placeholder=value arguments.
func parsePairs(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("bad placeholder argument %q, want name=value", arg)
		}
		values[parts[0]] = parts[1]
	}
	return values, nil
}

// promptMissing asks for each declared placeholder absent from values.
func promptMissing(r *recipe.Recipe, values map[string]string) error {
	for _, name := range r.Placeholders {
		if _, ok := values[name]; ok {
			continue
		}
		prompt := promptui.Prompt{Label: name}
		v, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("reading value for %q: %w", name, err)
		}
		values[name] = v
	}
	return nil
}

func runRecipe(ctx context.Context, cfg *config, c store.Collection, name string, values map[string]string) error {
	r, ok := c[name]
	if !ok {
		return fmt.Errorf("no recipe named %q", name)
	}
	if err := promptMissing(r, values); err != nil {
		return err
	}
	steps, err := recipe.Resolve(r, values)
	if err != nil {
		return err
	}

	d, err := connectDriver(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	engine := replay.NewEngine(d, cfg.logger, replay.WithWaitTimeout(cfg.waitTimeout))
	res := engine.Run(ctx, steps)
	if res.Failed() {
		return fmt.Errorf("run %s", res)
	}
	fmt.Println(okText(fmt.Sprintf("recipe %q %s", name, res)))

	return nil
}

func connectDriver(ctx context.Context, cfg *config) (*driver.CDP, error) {
	if cfg.wsURL == "" {
		return nil, fmt.Errorf("no --ws-url given (or SNAPREC_WS_URL); " +
			"start the browser with remote debugging and point me at a page target")
	}
	return driver.Connect(ctx, cfg.wsURL, cfg.logger)
}

func recordRecipe(ctx context.Context, cfg *config, name, description string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := recorder.New(name, description, cfg.logger)
	if err != nil {
		return err
	}

	d, err := connectDriver(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	events, err := d.StartCapture(ctx)
	if err != nil {
		return err
	}

	startURL, err := (&promptui.Prompt{Label: "Starting URL"}).Run()
	if err != nil {
		return err
	}
	if err := d.Navigate(ctx, startURL); err != nil {
		return err
	}

	fmt.Println(consoleText("recording: interact with the page"))
	fmt.Println(consoleText("type 'stop' to finish, ':wait <ms>' to insert a wait step"))
	fmt.Println(consoleText("use {name} tokens in form fields to create placeholders"))

	input := make(chan string)
	go func() {
		defer close(input)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			input <- strings.TrimSpace(sc.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return finishRecording(cfg, rec)
		case ev, ok := <-events:
			if !ok {
				return finishRecording(cfg, rec)
			}
			if err := rec.OnEvent(ev); err != nil {
				return err
			}
		case line, ok := <-input:
			if !ok || strings.EqualFold(line, "stop") {
				return finishRecording(cfg, rec)
			}
			if ms, ok := parseWaitCommand(line); ok {
				if err := rec.AddWait(ms); err != nil {
					return err
				}
				fmt.Println(detailText(fmt.Sprintf("inserted wait %dms", ms)))
			}
		}
	}
}

func parseWaitCommand(line string) (int64, bool) {
	if !strings.HasPrefix(line, ":wait") {
		return 0, false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, ":wait")), 10, 64)
	if err != nil || ms < 0 {
		fmt.Println(errorText("usage: :wait <milliseconds>"))
		return 0, false
	}
	return ms, true
}

func finishRecording(cfg *config, rec *recorder.Recorder) error {
	r, err := rec.Finish()
	if err != nil {
		return err
	}
	s := store.New(cfg.recipesPath, cfg.logger)
	c, err := s.Load()
	if err != nil {
		return err
	}
	if err := s.Upsert(c, r); err != nil {
		return err
	}
	fmt.Println(okText(fmt.Sprintf("recipe %q saved with %d steps", r.Name, len(r.Steps))))

	return nil
}
