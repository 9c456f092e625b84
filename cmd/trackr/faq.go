package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/trackr/pkg/faq"
)

var (
	faqMarkdown bool
	faqWidth    int
)

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Show the frequently asked questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if faqMarkdown {
			_, err := fmt.Fprint(cmd.OutOrStdout(), faq.Markdown())
			return err
		}
		width := faqWidth
		if width <= 0 {
			width = 80
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
		out, err := faq.Render(width)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	faqCmd.Flags().BoolVar(&faqMarkdown, "markdown", false, "print raw markdown")
	faqCmd.Flags().IntVar(&faqWidth, "width", 0, "wrap width (default terminal width)")
	rootCmd.AddCommand(faqCmd)
}
