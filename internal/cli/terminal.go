package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/placeserve/internal/logger"
	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// terminal renders CLI output. Colors follow what out supports.
type terminal struct {
	out      io.Writer
	log      *log.Logger
	showHTML bool

	match     lipgloss.Style
	secondary lipgloss.Style
}

func newTerminal(out io.Writer, showHTML bool) *terminal {
	r := lipgloss.NewRenderer(out)
	return &terminal{
		out:       out,
		log:       logger.NewWithConfig(out, "", log.InfoLevel, false, false, log.TextFormatter),
		showHTML:  showHTML,
		match:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		secondary: r.NewStyle().Faint(true),
	}
}

func (t *terminal) banner() {
	t.log.Print("PlaceServe CLI [BETA]")
	t.log.Print("type an address and press Enter, :help for commands (Ctrl+C to exit):")
}

func (t *terminal) usage() {
	t.log.Print("commands:")
	t.log.Print("  :N                  select suggestion N and print its address")
	t.log.Print("  :opts key=value ... region, lang, types, regions, bias=lat,lng,r, origin=lat,lng")
	t.log.Print("  :refresh            start a new session")
}

func (t *terminal) prompt() {
	fmt.Fprint(t.out, "> ")
}

func (t *terminal) suggestions(input string, list []suggest.Suggestion, elapsed time.Duration) {
	if len(list) == 0 {
		t.log.Warnf("No suggestions found for '%s'", input)
		return
	}
	if input != "" {
		log.Debugf("Took [ %v ] for '%s'", elapsed, input)
		t.log.Printf("Found %d suggestions for '%s':", len(list), input)
	}
	for i := range list {
		t.log.Printf("%2d. %s", i+1, t.line(&list[i]))
	}
}

func (t *terminal) line(s *suggest.Suggestion) string {
	if t.showHTML {
		return s.FormattedHTML
	}
	mark := func(seg string) string { return t.match.Render(seg) }
	p := s.Prediction
	if p.MainText == nil {
		return suggest.HighlightWith(p.Text, mark)
	}
	main := suggest.HighlightWith(p.MainText, mark)
	if p.SecondaryText == nil || p.SecondaryText.Text == "" {
		return main
	}
	return main + " " + t.secondary.Render(p.SecondaryText.Text)
}

func (t *terminal) details(label string, d *suggest.PlaceDetails) {
	if d == nil || d.Address == nil {
		t.log.Warnf("No address details for '%s'", label)
		return
	}
	if d.Place != nil && d.Place.FormattedAddress != "" {
		label = d.Place.FormattedAddress
	}
	out, err := yaml.Marshal(d.Address)
	if err != nil {
		t.failure(fmt.Errorf("encoding address: %w", err))
		return
	}
	t.log.Printf("Address of '%s':", label)
	fmt.Fprint(t.out, string(out))
}

func (t *terminal) options(o places.RequestOptions) {
	t.log.Print("Options updated",
		"region", o.RegionCode,
		"lang", o.LanguageCode,
		"types", strings.Join(o.IncludedPrimaryTypes, ","),
		"regions", strings.Join(o.IncludedRegionCodes, ","),
	)
}

func (t *terminal) session(token places.SessionToken) {
	t.log.Print("New session", "token", string(token))
}

func (t *terminal) failure(err error) {
	t.log.Error(err.Error())
}
