// Command wordfreq counts word frequencies from standard input using an
// open-addressing hash table, and optionally spell-checks a file against
// the words it has read.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

const usageText = `Usage: %s [OPTION]... <STDIN>

Perform various operations using a hash table.  By default, words are
read from stdin and added to the hash table, before being printed out
alongside their frequencies to stdout.

 -c FILENAME  Check spelling of words in FILENAME using words
              from stdin as dictionary.  Print unknown words to
              stdout, timing info & count to stderr (ignore -p)
 -d           Use double hashing (linear probing is the default)
 -e           Display entire contents of hash table on stderr
 -p           Print stats info instead of frequencies & words
 -s SNAPSHOTS Show SNAPSHOTS stats snapshots (if -p is used)
 -t TABLESIZE Use the first prime >= TABLESIZE as htable size
 -config PATH Read settings from a YAML file

 -h           Display this message
`

// options holds what the command line asked for beyond config values.
type options struct {
	configPath string
	checkFile  string
	dumpTable  bool
	printStats bool
	help       bool
}

// parseFlags loads configuration and lays the explicitly given flags over
// it, so flags win over the file and the environment.
func parseFlags(args []string, stderr io.Writer) (*config.Config, options, error) {
	var opts options
	fs := flag.NewFlagSet("wordfreq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintf(stderr, usageText, "wordfreq") }

	fs.StringVar(&opts.configPath, "config", "", "path to config file")
	fs.StringVar(&opts.checkFile, "c", "", "spell-check FILE against the dictionary on stdin")
	double := fs.Bool("d", false, "use double hashing")
	fs.BoolVar(&opts.dumpTable, "e", false, "print the entire table to stderr")
	fs.BoolVar(&opts.printStats, "p", false, "print stats instead of frequencies")
	snapshots := fs.Int("s", 10, "number of stats snapshots")
	size := fs.Int("t", 113, "table size, rounded up to a prime")
	fs.BoolVar(&opts.help, "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return nil, opts, apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage, err.Error())
	}
	if opts.help {
		return nil, opts, nil
	}
	if fs.NArg() > 0 {
		return nil, opts, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"unexpected argument %q", fs.Arg(0))
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, opts, apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage, err.Error())
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			cfg.Table.Policy = "linear"
			if *double {
				cfg.Table.Policy = "double"
			}
		case "s":
			cfg.Table.Snapshots = *snapshots
		case "t":
			cfg.Table.Size = *size
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, opts, err
	}
	return cfg, opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
