package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/schemaref"
	"github.com/reoring/schemaref/document"
)

// Version information set at build time.
var version = "dev"

type globalFlags struct {
	cacheSize int
	maxDepth  int
	maxBytes  int64
	timeout   time.Duration
	userAgent string
	verbose   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorMsg("%s", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "schemaref",
		Short: "Resolve JSON Schema $ref references",
		Long: `schemaref resolves JSON Schema "$ref" references across local files,
http(s) URLs and the schema document itself, honoring "id"/"$id" scoping.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&g.cacheSize, "cache-size", schemaref.DefaultCacheSize, "documents kept in the LRU cache (0 disables caching)")
	pf.IntVar(&g.maxDepth, "max-depth", 0, "maximum nesting depth of loaded documents (0 = unlimited)")
	pf.Int64Var(&g.maxBytes, "max-bytes", 0, "maximum size of loaded documents in bytes (0 = unlimited)")
	pf.DurationVar(&g.timeout, "timeout", 30*time.Second, "timeout for http(s) fetches")
	pf.StringVar(&g.userAgent, "user-agent", "schemaref/"+version, "User-Agent header for http(s) fetches")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log every resource load")

	rootCmd.AddCommand(derefCmd(g), refsCmd(g))
	return rootCmd
}

func (g *globalFlags) options() []schemaref.Option {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return []schemaref.Option{
		schemaref.WithCacheSize(g.cacheSize),
		schemaref.WithLogger(logger),
		schemaref.WithHTTPClient(&http.Client{Timeout: g.timeout}),
		schemaref.WithUserAgent(g.userAgent),
		schemaref.WithDecodeOptions(document.Options{MaxDepth: g.maxDepth, MaxBytes: g.maxBytes}),
	}
}

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", failColor.Sprint("✗"), fmt.Sprintf(format, args...))
}
