// Package faq holds the frequently asked questions shown next to the chart.
package faq

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Title heads the FAQ page.
const Title = "Frequently Asked Questions (FAQs)"

// Entry is one question and its answer.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Entries are listed in display order.
var Entries = []Entry{
	{
		Question: "How are the effective reproduction numbers calculated?",
		Answer: "The effective reproduction numbers are inferred from the growth rate of the number of infected individuals. " +
			"First, we calculate the number of infected individuals from data on new cases. " +
			"Then, we use statistical filtering techniques to obtain a “smoothed” version of the growth rate of the number of infected individuals. " +
			"Finally, we use a formula given by standard epidemiological theory to infer the effective reproduction number. " +
			"The full technical details are provided in the associated paper.",
	},
	{
		Question: "What is the source of the original data?",
		Answer: "The original data are collected by the John Hopkins CSSE team and are publicly available online " +
			"(https://github.com/CSSEGISandData/COVID-19).",
	},
	{
		Question: "What are the known issues / limitations of the estimates?",
		Answer: "First, if new cases are reported with a delay, then our estimates will also be delayed. " +
			"Second, if the fraction of detected COVID-19 cases changes rapidly over short windows of time, that will bias the estimates. " +
			"Third, because of data limitations, we do not account for imported cases. " +
			"Finally, the estimates may be less reliable when the number of new cases is very low (e.g., later on in the epidemic). " +
			"For further discussion of these and some additional potential issues, please see the associated paper.",
	},
	{
		Question: "Are the estimated reproduction numbers accurate if not all cases of COVID-19 are detected?",
		Answer: "In the paper, we show theoretically that even if not all cases of COVID-19 are detected, the estimates remain valid " +
			"if the percentage of detected cases is roughly constant (for example, 10% of the cases are detected). " +
			"The estimates are also accurate under some other cases of mismeasurement. " +
			"However, if the fraction of detected COVID-19 cases changes a lot over short windows of time, that will bias the estimates.",
	},
	{
		Question: "Are there any other dashboards that provide real-time estimates of the effective reproduction number?",
		Answer: "Yes, three that we are aware of are (i) https://cbdrh.github.io/ozcoviz/; (ii) rt.live; and " +
			"(iii) https://epiforecasts.io/covid/posts/global/. " +
			"We encourage the users to compare estimates across the different methods and dashboards. " +
			"Averaging multiple estimates is much more likely to yield accurate estimates and reduce model uncertainty.",
	},
	{
		Question: `How should the "Average Serial Interval" be chosen?`,
		Answer: "The serial number of a disease is the time between onset of symptoms in a case and onset of symptoms in his/her secondary cases. " +
			"For COVID-19, the average serial interval is estimated to be around 4-8 days. " +
			"In our baseline estimates, we use a serial interval of 7 days which yields estimates of the basic reproduction number " +
			"that are consistent with the current consensus values.",
	},
	{
		Question: "How can I reach you?",
		Answer:   "You can write an email to simas [dot] kucinskas [at] hu [dash] berlin [dot] de. All comments and suggestions are most welcome.",
	},
}

// Markdown returns the whole page as Markdown with numbered questions.
func Markdown() string {
	var sb strings.Builder
	sb.WriteString("# " + Title + "\n")
	for i, e := range Entries {
		fmt.Fprintf(&sb, "\n## %d. %s\n\n%s\n", i+1, e.Question, e.Answer)
	}
	return sb.String()
}

// Render formats the page for a terminal of the given width, picking a
// light or dark style from the terminal background.
func Render(width int) (string, error) {
	return RenderStyle(width, "")
}

// RenderStyle is Render with a fixed glamour style ("dark", "light",
// "notty", "ascii"). An empty style detects one.
func RenderStyle(width int, style string) (string, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("faq renderer: %w", err)
	}
	out, err := r.Render(Markdown())
	if err != nil {
		return "", fmt.Errorf("render faq: %w", err)
	}
	return strings.TrimRight(out, " \n\r\t") + "\n", nil
}
