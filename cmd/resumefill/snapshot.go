package main

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/autofill"
	"github.com/v0xg/resumefill/internal/crawler"
	"github.com/v0xg/resumefill/internal/dom"
)

func newSnapshotCmd() *cobra.Command {
	var (
		wait bool
		html string
	)
	cmd := &cobra.Command{
		Use:   "snapshot [url]",
		Short: "Remember the values currently entered on a page",
		Long: `snapshot reads every labelled field of the page and stores its value in
memory. Later fills use remembered values for fields the model leaves empty.

With --wait the browser stays open until you press Enter, so you can complete
the form by hand first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			if url == "" && html == "" {
				return errors.New("a URL or --html file is required")
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var doc dom.Document
			if html != "" {
				if doc, err = parseHTMLFile(html, url); err != nil {
					return err
				}
			} else {
				fmt.Printf("→ Opening %s... ", url)
				browser, err := crawler.Open(url, crawler.Options{
					Width:      a.cfg.Browser.Width,
					Height:     a.cfg.Browser.Height,
					Headless:   a.cfg.Browser.Headless && !wait,
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

				if wait {
					pause := promptui.Prompt{Label: "Fill the form in the browser, then press Enter to snapshot it"}
					if _, err := pause.Run(); err != nil {
						return err
					}
				}
			}

			engine := autofill.New(autofill.Options{Logger: a.log})
			items, err := engine.Snapshot(doc)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No filled fields found, nothing remembered.")
				return nil
			}

			n, err := a.memory.Upsert(cmd.Context(), items)
			if err != nil {
				return err
			}
			a.log.Debug("memory updated", zap.Int("scanned", len(items)), zap.Int("stored", n))
			fmt.Printf("✓ Remembered %d fields\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for Enter before reading the page")
	cmd.Flags().StringVar(&html, "html", "", "Read a local HTML file instead of a live page")
	return cmd
}
