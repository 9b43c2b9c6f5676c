package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/v0xg/resumefill/internal/autofill"
	"github.com/v0xg/resumefill/internal/crawler"
	"github.com/v0xg/resumefill/internal/dom"
	"github.com/v0xg/resumefill/internal/dom/htmldom"
	"github.com/v0xg/resumefill/internal/executor"
	"github.com/v0xg/resumefill/internal/gifgen"
	"github.com/v0xg/resumefill/internal/overlay"
	"github.com/v0xg/resumefill/internal/resume"
	"github.com/v0xg/resumefill/internal/scanner"
)

type fillFlags struct {
	html     string
	out      string
	review   string
	keepOpen bool
}

func newFillCmd() *cobra.Command {
	var f fillFlags
	cmd := &cobra.Command{
		Use:   "fill [url]",
		Short: "Fill the form on a page from the stored résumé",
		Long: `fill opens the page, scans its form, asks the active model to map the stored
résumé onto the fields and writes the values. Fields the model leaves empty are
completed from memory when a remembered value fits.

With --html the form is read from a local file and the filled HTML can be
written with --out; no browser is started.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			return runFill(cmd, url, f)
		},
	}
	cmd.Flags().StringVar(&f.html, "html", "", "Fill a local HTML file instead of a live page")
	cmd.Flags().StringVar(&f.out, "out", "", "Write the filled HTML here (with --html)")
	cmd.Flags().StringVar(&f.review, "review", "", "Write a before/after review GIF here")
	cmd.Flags().BoolVar(&f.keepOpen, "keep-open", false, "Keep the browser open to review, correct and submit by hand")
	return cmd
}

func runFill(cmd *cobra.Command, url string, f fillFlags) error {
	switch {
	case url == "" && f.html == "":
		return errors.New("a URL or --html file is required")
	case f.out != "" && f.html == "":
		return errors.New("--out needs --html")
	case f.review != "" && f.html != "":
		return errors.New("--review needs a live page")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	var structured any
	stored, err := a.resumes.Load(ctx)
	switch {
	case err == nil:
		structured = stored.Structured
	case errors.Is(err, resume.ErrNoResume):
	default:
		return err
	}

	provider, err := a.optionalProvider(ctx)
	if err != nil {
		return err
	}
	remembered, err := a.memory.Load(ctx)
	if err != nil {
		return err
	}

	var (
		doc     dom.Document
		static  *htmldom.Document
		browser *crawler.Browser
	)
	if f.html != "" {
		static, err = parseHTMLFile(f.html, url)
		if err != nil {
			return err
		}
		doc = static
	} else {
		fmt.Printf("→ Opening %s... ", url)
		browser, err = crawler.Open(url, crawler.Options{
			Width:      a.cfg.Browser.Width,
			Height:     a.cfg.Browser.Height,
			Headless:   a.cfg.Browser.Headless && !f.keepOpen,
			Timeout:    a.cfg.Browser.Timeout,
			ProfileDir: a.cfg.Browser.ProfileDir,
			Logger:     a.log,
		})
		if err != nil {
			fmt.Println("failed")
			return err
		}
		defer browser.Close()
		fmt.Println("done")
		doc = browser.Document()
	}

	var before image.Image
	if f.review != "" {
		if before, err = browser.Screenshot(); err != nil {
			return err
		}
	}

	steps := &progress{w: os.Stdout}
	engine := autofill.New(autofill.Options{
		Provider:     provider,
		Executor:     executor.New(executor.Options{SettleDelay: a.cfg.Fill.SettleDelay, Logger: a.log}),
		Logger:       a.log,
		OnTransition: steps.transition,
	})

	report, err := engine.Fill(ctx, autofill.Request{
		Document: doc,
		Resume:   structured,
		Memory:   remembered,
	})
	if err != nil {
		return err
	}
	printReport(os.Stdout, report)

	if f.review != "" {
		if err := writeReview(f.review, browser, engine, report, before); err != nil {
			return err
		}
	}
	if f.out != "" {
		if err := writeHTML(f.out, static); err != nil {
			return err
		}
		fmt.Printf("✓ Saved filled form to %s\n", f.out)
	}
	if f.keepOpen && browser != nil {
		return reviewLoop(ctx, engine, report)
	}
	return nil
}

func parseHTMLFile(path, url string) (*htmldom.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if url == "" {
		url = "file://" + path
	}
	return htmldom.Parse(file, url)
}

func writeHTML(path string, doc *htmldom.Document) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := doc.Render(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// progress prints one "→ Step... done" line per engine state.
type progress struct {
	w    io.Writer
	open bool
}

var stepLabels = map[autofill.State]string{
	autofill.StateScanning:      "Scanning form",
	autofill.StatePrompting:     "Building prompt",
	autofill.StateAwaitingModel: "Waiting for the model",
	autofill.StateReconciling:   "Reading the mapping",
	autofill.StateApplying:      "Filling fields",
}

func (p *progress) transition(_, to autofill.State) {
	if to.Terminal() {
		if to == autofill.StateFailed {
			p.finish("failed")
		} else {
			p.finish("done")
		}
		return
	}
	label, ok := stepLabels[to]
	if !ok {
		return
	}
	p.finish("done")
	fmt.Fprintf(p.w, "→ %s... ", label)
	p.open = true
}

func (p *progress) finish(word string) {
	if p.open {
		fmt.Fprintln(p.w, word)
		p.open = false
	}
}

func printReport(w io.Writer, r *autofill.Report) {
	ok := color.New(color.FgGreen).SprintFunc()
	mem := color.New(color.FgCyan).SprintFunc()
	miss := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, item := range r.Items {
		switch {
		case item.Filled && autofill.IsMemorySourced(item):
			fmt.Fprintf(w, "  %s [%s] %s = %q %s\n", mem("✓"), item.FieldID, item.FieldLabel, item.Value, dim("("+item.Reason+")"))
		case item.Filled:
			fmt.Fprintf(w, "  %s [%s] %s = %q\n", ok("✓"), item.FieldID, item.FieldLabel, item.Value)
		default:
			why := item.Message
			if item.Reason != "" {
				why += "; " + item.Reason
			}
			fmt.Fprintf(w, "  %s [%s] %s %s\n", miss("✗"), item.FieldID, item.FieldLabel, dim("("+why+")"))
		}
	}
	fmt.Fprintf(w, "✓ Filled %d of %d fields. Review the form before submitting.\n", r.FilledCount, r.FieldCount)
}

func writeReview(path string, browser *crawler.Browser, engine *autofill.Engine, report *autofill.Report, before image.Image) error {
	fmt.Printf("→ Writing review GIF... ")
	after, err := browser.Screenshot()
	if err != nil {
		fmt.Println("failed")
		return err
	}

	var marks []overlay.Mark
	for _, item := range report.Items {
		h, ok := engine.Handle(item.FieldID)
		if !ok {
			continue
		}
		if box, ok := handleBox(h); ok {
			marks = append(marks, overlay.Mark{Box: box, Filled: item.Filled})
		}
	}

	size, err := gifgen.Generate(path, []image.Image{before, overlay.Highlight(after, marks)}, gifgen.Options{})
	if err != nil {
		fmt.Println("failed")
		return err
	}
	fmt.Println("done")
	fmt.Printf("✓ Saved review to %s (%.1f KB)\n", path, float64(size)/1024)
	return nil
}

// handleBox is the union of the rendered boxes of a field's elements.
func handleBox(h *scanner.Handle) (image.Rectangle, bool) {
	els := []dom.Element{h.Element}
	if h.Kind.IsGroup() {
		els = els[:0]
		for _, o := range h.Options {
			els = append(els, o.Element)
		}
	}
	var union image.Rectangle
	found := false
	for _, el := range els {
		b, ok := el.(dom.Boxer)
		if !ok {
			continue
		}
		r, ok := b.Box()
		if !ok {
			continue
		}
		if found {
			union = union.Union(r)
		} else {
			union, found = r, true
		}
	}
	return union, found
}

// reviewLoop lets the user correct fields in the open browser by id until
// an empty answer, Ctrl-C or Ctrl-D.
func reviewLoop(ctx context.Context, engine *autofill.Engine, report *autofill.Report) error {
	fmt.Println("Correct a field with `<field id> <value>` (checkbox groups take a JSON array or a comma list),")
	fmt.Println("show one with `<field id>`, or press Enter to close the browser.")

	for {
		prompt := promptui.Prompt{Label: "field"}
		line, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		id, value, hasValue := strings.Cut(line, " ")

		if !hasValue {
			v, err := engine.FieldValue(id)
			if err != nil {
				fmt.Println(color.RedString("✗ %v", err))
				continue
			}
			fmt.Printf("  %s = %s\n", labelOf(report, id), v.String())
			continue
		}

		if err := engine.Refill(ctx, id, strings.TrimSpace(value)); err != nil {
			fmt.Println(color.RedString("✗ %v", err))
			continue
		}
		fmt.Println(color.GreenString("✓ %s updated", labelOf(report, id)))
	}
}

func labelOf(r *autofill.Report, id string) string {
	for _, item := range r.Items {
		if item.FieldID == id {
			return item.FieldLabel
		}
	}
	return id
}
