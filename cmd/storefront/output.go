package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"storefront/internal/model"
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorGray = ""
}

func (c *cli) printSuccess(format string, args ...any) {
	if !c.quiet {
		fmt.Fprintf(c.out, "%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func (c *cli) printWarning(format string, args ...any) {
	fmt.Fprintf(c.out, "%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func (c *cli) printInfo(format string, args ...any) {
	if !c.quiet {
		fmt.Fprintf(c.out, "%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

// table writes rows aligned into columns. The first row is the header and
// is dropped in quiet mode.
func (c *cli) table(rows [][]string) error {
	if c.quiet && len(rows) > 0 {
		rows = rows[1:]
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func money(d decimal.Decimal) string {
	return "$" + model.FormatPrice(d)
}

// readSecret prompts for a secret on the terminal without echo. When stdin
// is not a terminal one line is read instead, so scripts can pipe it in.
func (c *cli) readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	if c.stdin == nil {
		c.stdin = bufio.NewReader(in)
	}
	line, err := c.stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
