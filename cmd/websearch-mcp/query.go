package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/young1lin/websearch-mcp/internal/render"
	"github.com/young1lin/websearch-mcp/internal/search"
)

var queryOpts struct {
	query             string
	provider          string
	num               int
	searchDepth       string
	includeRawContent bool
	includeAnswer     bool
	includeDomains    []string
	excludeDomains    []string
	location          string
	engine            string
	format            string
}

var queryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Run a single web.search in-process and print the result",
	Example: `  websearch-mcp query --provider serpapi --num 5 golang generics
  websearch-mcp query --query "latest AI research news" --format markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := queryOpts.query
		if q == "" {
			q = strings.Join(args, " ")
		}
		if strings.TrimSpace(q) == "" {
			return errors.New(`usage: websearch-mcp query --query "your query" [--provider tavily|serpapi] [--num 5] [--search-depth basic|advanced]`)
		}
		if queryOpts.format != "json" && queryOpts.format != "markdown" {
			return fmt.Errorf("unknown format %q (want json or markdown)", queryOpts.format)
		}

		_, d, cleanup, err := bootstrap()
		defer cleanup()
		if err != nil {
			return err
		}

		in := search.ToolInput{
			Query:          q,
			Provider:       queryOpts.provider,
			Num:            queryOpts.num,
			SearchDepth:    queryOpts.searchDepth,
			IncludeDomains: queryOpts.includeDomains,
			ExcludeDomains: queryOpts.excludeDomains,
			Location:       queryOpts.location,
			Engine:         queryOpts.engine,
		}
		if cmd.Flags().Changed("include-raw-content") {
			in.IncludeRawContent = &queryOpts.includeRawContent
		}
		if cmd.Flags().Changed("include-answer") {
			in.IncludeAnswer = &queryOpts.includeAnswer
		}

		result, err := d.Search(cmd.Context(), in)
		if err != nil {
			return err
		}
		if result.SoftFailure() {
			return errors.New(result.Text)
		}

		out := cmd.OutOrStdout()
		if queryOpts.format == "markdown" {
			fmt.Fprint(out, render.Markdown(result.Response))
			return nil
		}
		fmt.Fprintln(out, result.Text)
		return nil
	},
}

func init() {
	f := queryCmd.Flags()
	f.StringVarP(&queryOpts.query, "query", "q", "", "search query (defaults to the positional arguments)")
	f.StringVar(&queryOpts.provider, "provider", "", "tavily or serpapi (defaults to the configured provider)")
	f.IntVarP(&queryOpts.num, "num", "n", 5, "number of results to request")
	f.StringVar(&queryOpts.searchDepth, "search-depth", "basic", "Tavily search depth: basic or advanced")
	f.BoolVar(&queryOpts.includeRawContent, "include-raw-content", false, "Tavily: include raw page content")
	f.BoolVar(&queryOpts.includeAnswer, "include-answer", false, "Tavily: ask for a synthesized answer")
	f.StringSliceVar(&queryOpts.includeDomains, "include-domain", nil, "Tavily: restrict to these domains")
	f.StringSliceVar(&queryOpts.excludeDomains, "exclude-domain", nil, "Tavily: exclude these domains")
	f.StringVar(&queryOpts.location, "location", "", "SerpAPI: geographic bias")
	f.StringVar(&queryOpts.engine, "engine", "", "SerpAPI: engine (default google)")
	f.StringVarP(&queryOpts.format, "format", "f", "json", "output format: json or markdown")
}
