package symbols

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SP500URL is the Wikipedia page listing S&P 500 constituents.
const SP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

var errNoSymbolTable = errors.New("no table with a Symbol column")

// SP500Wikipedia scrapes the constituents table from Wikipedia.
type SP500Wikipedia struct {
	HTTP *resty.Client
	URL  string
}

func (s *SP500Wikipedia) Name() string { return SP500.String() }

func (s *SP500Wikipedia) Symbols(ctx context.Context) ([]string, error) {
	url := s.URL
	if url == "" {
		url = SP500URL
	}
	resp, err := s.HTTP.R().SetContext(ctx).SetHeader("Accept", "text/html").Get(url)
	if err != nil {
		return nil, fmt.Errorf("sp500 page: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sp500 page: status %d", resp.StatusCode())
	}
	list, err := parseSymbolTable(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("sp500 page: %w", err)
	}
	return Normalize(list), nil
}

// parseSymbolTable returns the Symbol column of the first table that has one.
func parseSymbolTable(page []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	for _, table := range findAll(doc, atom.Table) {
		rows := findAll(table, atom.Tr)
		if len(rows) == 0 {
			continue
		}
		col := -1
		for i, cell := range cells(rows[0]) {
			if strings.EqualFold(textOf(cell), "symbol") {
				col = i
				break
			}
		}
		if col < 0 {
			continue
		}
		var out []string
		for _, row := range rows[1:] {
			cs := cells(row)
			if col < len(cs) {
				if v := textOf(cs[col]); v != "" {
					out = append(out, v)
				}
			}
		}
		return out, nil
	}
	return nil, errNoSymbolTable
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
			if a == atom.Table {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func cells(row *html.Node) []*html.Node {
	var out []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, c)
		}
	}
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
