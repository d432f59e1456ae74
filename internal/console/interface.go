package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"locator-catalog/internal/config"
	"locator-catalog/internal/entity"
	"locator-catalog/internal/ports"
	"locator-catalog/internal/usecase"
	"locator-catalog/pkg/logg"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const consoleName = "Console"

var errExit = errors.New("exit")

type Interface struct {
	config     *config.Config
	logger     *zap.Logger
	usecase    *usecase.Service
	browser    ports.BrowserManager
	shutdowner fx.Shutdowner
	in         io.Reader
	out        io.Writer
	ctx        context.Context
	cancel     context.CancelFunc

	site string
	page string
}

type Params struct {
	fx.In

	Config     *config.Config
	Logger     *zap.Logger
	Usecase    *usecase.Service
	Browser    ports.BrowserManager
	Shutdowner fx.Shutdowner
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Interface{
		config:     params.Config,
		logger:     params.Logger.With(zap.String(logg.Layer, consoleName)),
		usecase:    params.Usecase,
		browser:    params.Browser,
		shutdowner: params.Shutdowner,
		in:         os.Stdin,
		out:        os.Stdout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start reads commands until input ends or exit is entered, then asks the
// application to shut down.
func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	scanner := bufio.NewScanner(i.in)

	for {
		if i.ctx.Err() != nil {
			break
		}

		fmt.Fprint(i.out, "\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if errors.Is(err, errExit) {
				break
			}

			i.logger.Error("Command error", zap.String("input", input), zap.Error(err))
			fmt.Fprintf(i.out, "Error: %v\n", err)
		}
	}

	if i.shutdowner != nil {
		return i.shutdowner.Shutdown()
	}

	return nil
}

func (i *Interface) Stop() error {
	i.logger.Info("Stopping console interface...")
	i.cancel()

	return nil
}

func (i *Interface) handleCommand(input string) error {
	args, err := splitArgs(input)
	if err != nil {
		return err
	}

	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help", "h":
		i.printHelp()

		return nil
	case "exit", "quit", "q":
		fmt.Fprintln(i.out, "Shutting down...")

		return errExit
	case "use":
		return i.use(args)
	case "resolve":
		return i.resolve(args)
	case "heal":
		return i.heal(args)
	case "add":
		return i.add(args)
	case "baseline":
		return i.baseline()
	case "compare":
		return i.compare(args)
	case "capture":
		return i.capture(args)
	case "probe":
		return i.probe(args)
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
}

func (i *Interface) use(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: use <site> [page]")
	}

	i.site = args[0]
	i.page = entity.DefaultPage
	if len(args) > 1 {
		i.page = args[1]
	}

	fmt.Fprintf(i.out, "Using %s / %s\n", i.site, i.page)

	return nil
}

func (i *Interface) requirePage() error {
	if i.site == "" {
		return errors.New("no page selected, run: use <site> [page] or capture <url>")
	}

	return nil
}

func (i *Interface) resolve(args []string) error {
	if err := i.requirePage(); err != nil {
		return err
	}

	if len(args) < 1 {
		return errors.New("usage: resolve <description> [role]")
	}

	sel, found := i.usecase.Resolver.Resolve(i.ctx, i.site, i.page, args[0], argAt(args, 1))
	if !found {
		fmt.Fprintf(i.out, "Not in catalog: %q\n", args[0])

		return nil
	}

	fmt.Fprintf(i.out, "%s\n", sel)

	return nil
}

func (i *Interface) heal(args []string) error {
	if err := i.requirePage(); err != nil {
		return err
	}

	if len(args) < 3 {
		return errors.New("usage: heal <name> <original query> <final selector> [method]")
	}

	err := i.usecase.Healer.Heal(i.ctx, i.site, i.page, entity.Discovery{
		Name:          args[0],
		OriginalQuery: args[1],
		FinalSelector: args[2],
		Method:        entity.ParseDiscoveryMethod(argAt(args, 3)),
		Metadata:      map[string]any{"source": "console"},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(i.out, "Healed %q -> %s\n", args[0], args[2])

	return nil
}

func (i *Interface) add(args []string) error {
	if err := i.requirePage(); err != nil {
		return err
	}

	if len(args) < 2 {
		return errors.New("usage: add <name> <selector> [type]")
	}

	elementType := entity.ElementTypeUnknown
	if t := argAt(args, 2); t != "" {
		elementType = entity.ElementType(t)
	}

	originID := "console-" + uuid.NewString()

	err := i.usecase.Importer.AddElement(i.ctx, i.site, i.page, args[0], entity.ElementEntry{
		Selector: args[1],
		Type:     elementType,
	}, originID)
	if err != nil {
		return err
	}

	fmt.Fprintf(i.out, "Added %q (%s)\n", args[0], originID)

	return nil
}

func (i *Interface) baseline() error {
	if err := i.requirePage(); err != nil {
		return err
	}

	path, err := i.usecase.Comparator.CreateBaseline(i.ctx, i.site, i.page)
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Fprintln(i.out, "No catalog to snapshot")

		return nil
	}

	fmt.Fprintf(i.out, "Baseline: %s\n", path)

	return nil
}

func (i *Interface) compare(args []string) error {
	if err := i.requirePage(); err != nil {
		return err
	}

	report, err := i.usecase.Comparator.Compare(i.ctx, i.site, i.page, argAt(args, 0))
	if err != nil {
		return err
	}

	printReport(i.out, report)

	return nil
}

func (i *Interface) capture(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: capture <url> [page]")
	}

	if err := i.requireBrowser(); err != nil {
		return err
	}

	url := args[0]

	if err := i.browser.Navigate(i.ctx, url); err != nil {
		return err
	}

	html, err := i.browser.Content(i.ctx)
	if err != nil {
		return err
	}

	doc, err := i.usecase.Importer.Import(i.ctx, url, argAt(args, 1), html)
	if err != nil {
		return err
	}

	i.site, _ = entity.SiteAndPage(url)
	i.page = doc.Page

	fmt.Fprintf(i.out, "Captured %d elements into %s / %s (v%s)\n", len(doc.Elements), i.site, i.page, doc.Version)

	return nil
}

func (i *Interface) probe(args []string) error {
	if err := i.requirePage(); err != nil {
		return err
	}

	if len(args) < 1 {
		return errors.New("usage: probe <description> [role]")
	}

	if err := i.requireBrowser(); err != nil {
		return err
	}

	sel, found := i.usecase.Resolver.Resolve(i.ctx, i.site, i.page, args[0], argAt(args, 1))
	if !found {
		fmt.Fprintf(i.out, "Not in catalog: %q\n", args[0])

		return nil
	}

	result, err := i.browser.Probe(i.ctx, sel)
	if err != nil {
		return err
	}

	fmt.Fprintf(i.out, "%s\n  matches: %d  visible: %t\n", sel, result.Count, result.Visible)
	if result.Text != "" {
		fmt.Fprintf(i.out, "  text: %s\n", result.Text)
	}

	return nil
}

func (i *Interface) requireBrowser() error {
	if i.browser == nil || !i.browser.IsReady() {
		return errors.New("browser is not running, set BROWSER_ENABLED=true")
	}

	return nil
}

func argAt(args []string, n int) string {
	if n < len(args) {
		return args[n]
	}

	return ""
}

func (i *Interface) printBanner() {
	fmt.Fprintln(i.out, `
=============================================
  Locator Catalog
  resolve, heal and diff page element maps
=============================================`)
}

func (i *Interface) printHelp() {
	fmt.Fprintln(i.out, `
Available commands:
  use <site> [page]                       - Select the catalog to work on
  resolve <description> [role]            - Look up a locator
  heal <name> <query> <selector> [method] - Record a locator found at runtime
  add <name> <selector> [type]            - Add an element
  baseline                                - Snapshot the current catalog
  compare [version]                       - Diff against a baseline
  capture <url> [page]                    - Load a page and import its elements
  probe <description> [role]              - Resolve and check on the live page
  help, h                                 - Show this help message
  exit, quit, q                           - Exit the application

Quote arguments that contain spaces: resolve "Samples tab" tab
Quotes inside a selector are kept: add Primary button:has-text('Primary Site')`)
}
