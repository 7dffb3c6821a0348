// Package report renders table contents, load statistics and spell-check
// results as plain text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/htable"
)

// WriteFrequencies writes one "count,  word" line per entry.
func WriteFrequencies(w io.Writer, freqs []htable.Frequency) error {
	bw := bufio.NewWriter(w)
	for _, f := range freqs {
		fmt.Fprintf(bw, "%d,  %s\n", f.Count, f.Word)
	}
	return bw.Flush()
}

// WriteTable writes every slot with its frequency and the collisions its key
// needed when placed. Empty slots show zeros and no word.
func WriteTable(w io.Writer, entries []htable.Entry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "  Pos  Freq  Stats  Word")
	fmt.Fprintln(bw, strings.Repeat("-", 40))
	for _, e := range entries {
		fmt.Fprintf(bw, "%5d %5d %5d   %s\n", e.Index, e.Frequency, e.Collisions, e.Key)
	}
	return bw.Flush()
}

// WriteStats writes the snapshot table under a heading naming the policy.
func WriteStats(w io.Writer, policy htable.Policy, snapshots []htable.Snapshot) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n\n", policy)
	fmt.Fprintln(bw, "Percent   Current    Percent    Average      Maximum")
	fmt.Fprintln(bw, " Full     Entries    At Home   Collisions   Collisions")
	fmt.Fprintln(bw, strings.Repeat("-", 54))
	for _, s := range snapshots {
		fmt.Fprintf(bw, "%4d %10d %10.1f %10.2f %11d\n",
			s.PercentFull, s.Entries, s.AtHomePercent, s.AverageCollisions, s.MaxCollisions)
	}
	return bw.Flush()
}

// SpellSummary is the closing report of a spell check. Times are seconds.
type SpellSummary struct {
	FillSeconds   float64
	SearchSeconds float64
	Unknown       int
}

func WriteSpellSummary(w io.Writer, s SpellSummary) error {
	_, err := fmt.Fprintf(w, "Fill time     : %f\nSearch time   : %f\nUnknown words = %d\n",
		s.FillSeconds, s.SearchSeconds, s.Unknown)
	return err
}
