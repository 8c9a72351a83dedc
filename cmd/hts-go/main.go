package main

import (
	"flag"
	"fmt"
	"os"

	"hts-go/packages/htstring"
	"hts-go/packages/htstring/src/gomp"
	"hts-go/packages/htstring/src/tstring"
)

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: hts-go [flags]")
		_, _ = fmt.Fprintln(os.Stderr, "")
		_, _ = fmt.Fprintln(os.Stderr, "Parses a demo template and prints the serialized markup.")
	}
	useGomponents := flag.Bool("gomponents", false, "render through the gomponents bridge")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*useGomponents); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(useGomponents bool) error {
	header, err := htstring.HTML(
		[]string{"<header><h1>", "</h1></header>"},
		"hts-go demo",
	)
	if err != nil {
		return err
	}

	items := []string{"templates in", "plain Go"}
	var listItems []any
	for _, item := range items {
		li, err := htstring.HTML([]string{"<li>", "</li>"}, item)
		if err != nil {
			return err
		}
		listItems = append(listItems, li)
	}

	page, err := htstring.HTML(
		[]string{
			"<!doctype html><html><body>",
			`<main class=`, "><ul>", "</ul><p>",
			"</p></main></body></html>",
		},
		header,
		map[string]bool{"demo": true, "page": true},
		listItems,
		"dynamic values stay content: <script> never becomes a tag",
	)
	if err != nil {
		return err
	}

	if useGomponents {
		return gomp.Lower(page).Render(os.Stdout)
	}
	fmt.Println(htstring.Render(page))

	// the same prebuilt header splices into another template untouched
	again, err := htstring.Parse(tstring.MustNew(
		[]string{"<div>", "<p>reused</p></div>"}, header,
	))
	if err != nil {
		return err
	}
	fmt.Println(htstring.Render(again))
	return nil
}
