// indexctl is a maintenance CLI for the index. The scans and bulk
// deletes it exposes walk the whole keyspace and are meant for
// development and testing, not production query paths.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/searchkit/termindex/internal/index"
	"github.com/searchkit/termindex/pkg/config"
	"github.com/searchkit/termindex/pkg/logger"
	"github.com/searchkit/termindex/pkg/redis"
)

const usage = `usage: indexctl [-config path] <command> [args]

commands:
  print                     dump the whole index (term, then url/count lines)
  terms                     list indexed terms
  keys                      list URLSet and TermCounter keys
  lookup <term>             show url -> count for one term
  is-indexed <doc-id>       report whether a document has been indexed
  clear-urlsets             delete every URLSet key
  clear-termcounters        delete every TermCounter key
  clear-all                 delete every key in the store
`

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, "text")

	store, err := redis.NewClient(cfg.Redis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to redis: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if err := run(ctx, store, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "indexctl %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, store index.Store, args []string) error {
	admin := index.NewAdmin(store)
	reader := index.NewReader(store)
	writer := index.NewWriter(store, nil)

	switch cmd := args[0]; cmd {
	case "print":
		return admin.PrintIndex(ctx, os.Stdout)

	case "terms":
		terms, err := admin.TermSet(ctx)
		if err != nil {
			return err
		}
		for _, term := range sorted(terms) {
			fmt.Println(term)
		}
		return nil

	case "keys":
		urlSetKeys, err := admin.URLSetKeys(ctx)
		if err != nil {
			return err
		}
		counterKeys, err := admin.TermCounterKeys(ctx)
		if err != nil {
			return err
		}
		sort.Strings(urlSetKeys)
		sort.Strings(counterKeys)
		for _, key := range urlSetKeys {
			fmt.Println(key)
		}
		for _, key := range counterKeys {
			fmt.Println(key)
		}
		return nil

	case "lookup":
		if len(args) != 2 {
			return fmt.Errorf("usage: lookup <term>")
		}
		counts, err := reader.Counts(ctx, args[1])
		if err != nil {
			return err
		}
		urls := make([]string, 0, len(counts))
		for url := range counts {
			urls = append(urls, url)
		}
		sort.Strings(urls)
		for _, url := range urls {
			fmt.Printf("%s %d\n", url, counts[url])
		}
		return nil

	case "is-indexed":
		if len(args) != 2 {
			return fmt.Errorf("usage: is-indexed <doc-id>")
		}
		ok, err := writer.IsIndexed(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Println(ok)
		return nil

	case "clear-urlsets":
		return admin.DeleteURLSets(ctx)

	case "clear-termcounters":
		return admin.DeleteTermCounters(ctx)

	case "clear-all":
		return admin.DeleteAllKeys(ctx)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
