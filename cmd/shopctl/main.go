package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/snapshop/shopkit/config"
	"github.com/snapshop/shopkit/internal/domain"
	"github.com/snapshop/shopkit/internal/infrastructure/shopapi"
	"github.com/snapshop/shopkit/internal/logger"
	"github.com/snapshop/shopkit/internal/usecase"
	"go.uber.org/zap"
)

const usage = `usage: shopctl <command> [flags]

commands:
  identify -file <path> [-mime <type>]           identify the product in a photo
  offers   -q <query> [offer flags]              list offers for a search query
  find     -file <path> [-candidate <key|index>] [offer flags]
                                                 identify, pick a candidate, list its offers
  health                                         check the backend is up
  version                                        show the backend build

offer flags: -num <n> -gl <country> -hl <language> -membership -sort relevance|price|retailer
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, log, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code
func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	client, err := shopapi.NewClient(shopapi.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		UserAgent:         cfg.API.UserAgent,
		DefaultNumResults: cfg.API.DefaultNumResults,
		MaxNumResults:     cfg.API.MaxNumResults,
		Country:           cfg.API.Country,
		Language:          cfg.API.Language,
	}, shopapi.WithLogger(log))
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", renderError(err))
		return 1
	}
	svc := usecase.NewShoppingService(client, log)

	var result any
	switch args[0] {
	case "identify":
		result, err = identify(ctx, svc, args[1:], stderr)
	case "offers":
		result, err = offers(ctx, svc, args[1:], stderr)
	case "find":
		result, err = find(ctx, svc, args[1:], stderr)
	case "health":
		result, err = client.Health(ctx)
	case "version":
		result, err = client.Version(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "%s\n", usageErr.msg)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", renderError(err))
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// usageError reports bad command line input
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// offerFlags registers the flags shared by offers and find
type offerFlags struct {
	num        *int
	country    *string
	language   *string
	membership *bool
	sort       *string
}

func addOfferFlags(fs *flag.FlagSet) *offerFlags {
	return &offerFlags{
		num:        fs.Int("num", 0, "Number of offers (0 uses the configured default)"),
		country:    fs.String("gl", "", "Country code (empty uses the configured default)"),
		language:   fs.String("hl", "", "Language code (empty uses the configured default)"),
		membership: fs.Bool("membership", false, "Include membership retailers such as Costco"),
		sort:       fs.String("sort", "relevance", "Ordering: relevance, price or retailer"),
	}
}

func (f *offerFlags) options() (usecase.FindOffersOptions, error) {
	order, err := usecase.ParseSortOrder(*f.sort)
	if err != nil {
		return usecase.FindOffersOptions{}, &usageError{msg: err.Error()}
	}
	return usecase.FindOffersOptions{
		OffersOptions: domain.OffersOptions{
			NumResults:        *f.num,
			Country:           *f.country,
			Language:          *f.language,
			IncludeMembership: *f.membership,
		},
		Sort: order,
	}, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return &usageError{msg: err.Error()}
	}
	return nil
}

func identify(ctx context.Context, svc *usecase.ShoppingService, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("identify", stderr)
	file := fs.String("file", "", "Path of the product photo")
	mimeType := fs.String("mime", "", "Image MIME type (detected when empty)")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *file == "" {
		return nil, &usageError{msg: "identify: -file is required"}
	}
	identified, err := svc.IdentifyFile(ctx, *file, *mimeType)
	if err != nil {
		return nil, err
	}
	return newIdentifyView(identified), nil
}

// candidateView is a candidate with the selectors find -candidate accepts
type candidateView struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	domain.ProductCandidate
}

// identifyView is the output of the identify command. Candidates hold the
// primary first, then each distinct alternative.
type identifyView struct {
	Candidates     []candidateView `json:"candidates"`
	Notes          string          `json:"notes,omitempty"`
	RawModelOutput string          `json:"raw_model_output,omitempty"`
}

func newIdentifyView(result *domain.IdentifyResult) identifyView {
	all := result.All()
	view := identifyView{
		Candidates:     make([]candidateView, 0, len(all)),
		Notes:          result.Notes,
		RawModelOutput: result.RawModelOutput,
	}
	for i, c := range all {
		view.Candidates = append(view.Candidates, candidateView{Index: i, Key: c.Key(), ProductCandidate: c})
	}
	return view
}

func offers(ctx context.Context, svc *usecase.ShoppingService, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("offers", stderr)
	query := fs.String("q", "", "Search query")
	of := addOfferFlags(fs)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *query == "" {
		return nil, &usageError{msg: "offers: -q is required"}
	}
	opts, err := of.options()
	if err != nil {
		return nil, err
	}
	return svc.Search(ctx, *query, opts)
}

// findResult is the output of the find command
type findResult struct {
	Candidate candidateView      `json:"candidate"`
	Offers    *usecase.OfferList `json:"offers"`
}

func find(ctx context.Context, svc *usecase.ShoppingService, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet("find", stderr)
	file := fs.String("file", "", "Path of the product photo")
	mimeType := fs.String("mime", "", "Image MIME type (detected when empty)")
	ref := fs.String("candidate", "", "Candidate key or index, as printed by identify (default: primary)")
	of := addOfferFlags(fs)
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *file == "" {
		return nil, &usageError{msg: "find: -file is required"}
	}
	opts, err := of.options()
	if err != nil {
		return nil, err
	}

	identified, err := svc.IdentifyFile(ctx, *file, *mimeType)
	if err != nil {
		return nil, err
	}

	selector := *ref
	if selector == "" {
		selector = "0"
	}
	candidate, err := usecase.SelectCandidate(identified, selector)
	if err != nil {
		return nil, err
	}

	list, err := svc.FindOffers(ctx, candidate, opts)
	if err != nil {
		return nil, err
	}
	view := candidateView{Key: candidate.Key(), ProductCandidate: candidate}
	for i, c := range identified.All() {
		if c.Key() == view.Key {
			view.Index = i
			break
		}
	}
	return findResult{Candidate: view, Offers: list}, nil
}

// renderError formats backend errors for the terminal
func renderError(err error) string {
	var rl *domain.RateLimitError
	if errors.As(err, &rl) {
		if wait, ok := rl.RetryAfter(); ok {
			return fmt.Sprintf("%s (retry after %s)", rl.Message, wait)
		}
		return rl.Message
	}

	var se *domain.ServerError
	if errors.As(err, &se) {
		return fmt.Sprintf("backend returned %d: %s", se.StatusCode, se.Message)
	}

	return err.Error()
}
