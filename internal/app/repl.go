package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/vk/injurylens/internal/session"
)

const replHelp = `Commands:
  products [FILTER]     list catalog codes and titles, optionally filtered
  select CODE           switch the analysis to a product code
  mode count|rate       switch the plot y axis
  tables                show the top-N table of every declared view
  plot                  show the age/sex series under the current mode
  story                 sample a fresh narrative from the current selection
  help                  show this text
  quit                  exit
`

// repl reads commands line by line and applies them to the session. Every
// command is resolved before the next prompt, so the user always observes
// results consistent with their latest inputs.
func (app *App) repl(ctx context.Context, inR io.Reader, sess *session.Session) error {
	app.prompt(sess)

	scanner := bufio.NewScanner(inR)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			app.prompt(sess)
			continue
		}

		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprint(app.outW, replHelp)
		case "products":
			app.printProducts(sess, strings.Join(args, " "))
		case "select":
			app.selectProduct(ctx, sess, args)
		case "mode":
			app.setMode(ctx, sess, args)
		case "tables", "show":
			app.printTables(ctx, sess)
		case "plot":
			app.printPlot(ctx, sess)
		case "story":
			app.printStory(ctx, sess)
		default:
			fmt.Fprintf(app.outW, "unknown command %q, try 'help'\n", cmd)
		}
		app.prompt(sess)
	}
	return scanner.Err()
}

func (app *App) prompt(sess *session.Session) {
	code := sess.ProductCode()
	title, _ := sess.Store().ProductTitle(code)
	fmt.Fprintf(app.outW, "[%d %s | %s]> ", code, title, sess.Mode())
}

func (app *App) printProducts(sess *session.Session, filter string) {
	filter = strings.ToLower(filter)
	tw := tabwriter.NewWriter(app.outW, 0, 4, 2, ' ', 0)
	for _, p := range sess.Store().ProductTitles() {
		if filter != "" && !strings.Contains(strings.ToLower(p.Title), filter) {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\n", p.Code, p.Title)
	}
	_ = tw.Flush()
}

func (app *App) selectProduct(ctx context.Context, sess *session.Session, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(app.outW, "usage: select CODE")
		return
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(app.outW, "not a product code: %q\n", args[0])
		return
	}
	if _, ok := sess.Store().ProductTitle(code); !ok {
		fmt.Fprintf(app.outW, "warning: code %d is not in the catalog\n", code)
	}
	sess.SelectProduct(ctx, code)
}

func (app *App) setMode(ctx context.Context, sess *session.Session, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(app.outW, "usage: mode count|rate")
		return
	}
	m, err := session.ParseMode(args[0])
	if err != nil {
		fmt.Fprintln(app.outW, err)
		return
	}
	sess.SetMode(ctx, m)
}

func (app *App) printTables(ctx context.Context, sess *session.Session) {
	for _, name := range sess.ViewNames() {
		buckets, err := sess.TopN(ctx, name)
		if err != nil {
			fmt.Fprintf(app.outW, "view %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(app.outW, "-- %s --\n", name)
		tw := tabwriter.NewWriter(app.outW, 0, 4, 2, ' ', 0)
		for _, b := range buckets {
			fmt.Fprintf(tw, "%s\t%.0f\n", b.Label, b.Weight)
		}
		_ = tw.Flush()
	}
}

func (app *App) printPlot(ctx context.Context, sess *session.Session) {
	points, err := sess.PlotSeries(ctx)
	if err != nil {
		fmt.Fprintln(app.outW, err)
		return
	}
	if len(points) == 0 {
		fmt.Fprintln(app.outW, "no plottable cohorts for the current selection")
		return
	}
	tw := tabwriter.NewWriter(app.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "age\tsex\t%s\n", sess.Mode())
	for _, p := range points {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\n", p.Age, p.Sex, p.Value)
	}
	_ = tw.Flush()
}

func (app *App) printStory(ctx context.Context, sess *session.Session) {
	story, err := sess.TellStory(ctx)
	if err != nil {
		if errors.Is(err, session.ErrEmptySelection) {
			fmt.Fprintln(app.outW, "no records match the current selection; pick another product")
			return
		}
		fmt.Fprintln(app.outW, err)
		return
	}
	fmt.Fprintln(app.outW, story)
}
