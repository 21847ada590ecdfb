package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/logparser"
	"github.com/V4T54L/causeway/internal/motif"
	"github.com/V4T54L/causeway/internal/query"
	"github.com/V4T54L/causeway/internal/usecase"
)

// options holds the flags shared by every command.
type options struct {
	fieldPattern   string
	delimiter      string
	execution      string
	validateClocks bool
}

func (o *options) pipeline() (*usecase.Pipeline, error) {
	re, err := logparser.CompileFieldPattern(o.fieldPattern)
	if err != nil {
		return nil, err
	}
	delim, err := logparser.CompileDelimiter(o.delimiter)
	if err != nil {
		return nil, err
	}
	return usecase.NewPipeline(logparser.New(logparser.WithFieldPattern(re), logparser.WithDelimiter(delim)), o.validateClocks), nil
}

// build returns the execution --execution selects.
func (o *options) build(lines []string) (usecase.Execution, error) {
	p, err := o.pipeline()
	if err != nil {
		return usecase.Execution{}, err
	}
	execs, err := p.BuildExecutions(lines)
	if err != nil {
		return usecase.Execution{}, err
	}
	return usecase.SelectExecution(execs, o.execution)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "causeway",
		Short: "Explore the causality graph of a distributed execution log",
		Long: `causeway reads a log of alternating event and vector timestamp lines,
builds the happened-before graph and lets you hide, highlight, collapse and
search it.

A log path of "-" reads from standard input. With --delimiter one log may
hold several executions; --execution picks the one to work on.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.fieldPattern, "field-pattern", "", "regular expression whose named groups become event fields")
	root.PersistentFlags().StringVar(&opts.delimiter, "delimiter", "", `regular expression for lines that separate executions; a group named "trace" labels them`)
	root.PersistentFlags().StringVarP(&opts.execution, "execution", "e", "", "label of the execution to use (default the first)")
	root.PersistentFlags().BoolVar(&opts.validateClocks, "validate-clocks", false, "reject logs whose per-host clocks skip or repeat values")

	root.AddCommand(
		newRenderCmd(opts),
		newHostsCmd(opts),
		newSearchCmd(opts),
		newMotifsCmd(opts),
		newClusterCmd(opts),
	)
	return root
}

func newRenderCmd(opts *options) *cobra.Command {
	var (
		viewFile string
		format   string
		flags    viewFlags
	)
	cmd := &cobra.Command{
		Use:   "render <log>",
		Short: "Apply a view to a log and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := usecase.ViewRequest{}
			if viewFile != "" {
				var err error
				if req, err = loadViewFile(viewFile); err != nil {
					return err
				}
			}
			flags.apply(cmd, &req)
			if opts.execution != "" {
				req.Execution = opts.execution
			}

			lines, err := readLog(cmd, args[0])
			if err != nil {
				return err
			}
			p, err := opts.pipeline()
			if err != nil {
				return err
			}
			v, err := p.View(lines, req)
			if err != nil {
				return err
			}
			r := v.Render()

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			case "text":
				_, err := io.WriteString(out, renderText(r))
				return err
			case "html":
				return renderHTML(out, args[0], r)
			default:
				return fmt.Errorf("unknown format %q (want json, text or html)", format)
			}
		},
	}
	cmd.Flags().StringVar(&viewFile, "view", "", "YAML file describing the view")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: json, text or html")
	flags.register(cmd)
	return cmd
}

// viewFlags are command line overrides for a view file.
type viewFlags struct {
	hide      []string
	highlight []string
	query     string
	collapse  int
	diff      []string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.hide, "hide", nil, "hosts to hide")
	cmd.Flags().StringSliceVar(&f.highlight, "highlight", nil, "hosts to highlight")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "highlight events matching a query")
	cmd.Flags().IntVar(&f.collapse, "collapse", 0, "collapse runs of at least this many local events")
	cmd.Flags().StringSliceVar(&f.diff, "diff", nil, "labels of executions to mark differences against")
}

func (f *viewFlags) apply(cmd *cobra.Command, req *usecase.ViewRequest) {
	if cmd.Flags().Changed("hide") {
		req.HiddenHosts = f.hide
	}
	if cmd.Flags().Changed("highlight") {
		req.HighlightHosts = f.highlight
	}
	if cmd.Flags().Changed("query") {
		req.Query = f.query
		req.Finder = nil
	}
	if cmd.Flags().Changed("collapse") {
		req.CollapseThreshold = f.collapse
	}
	if cmd.Flags().Changed("diff") {
		req.DiffAgainst = f.diff
	}
}

func newHostsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts <log>",
		Short: "List the hosts of a log with their event counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLog(cmd, args[0])
			if err != nil {
				return err
			}
			exec, err := opts.build(lines)
			if err != nil {
				return err
			}

			g := exec.Graph
			out := cmd.OutOrStdout()
			for _, h := range g.Hosts() {
				nodes := g.HostNodes(h)
				sent, received := 0, 0
				for _, id := range nodes {
					sent += len(g.Children(id))
					received += len(g.Parents(id))
				}
				fmt.Fprintf(out, "%s\t%d events\t%d sent\t%d received\n", hostStyle(h).Render(h), len(nodes), sent, received)
			}
			return nil
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <log> <query>",
		Short: "Print the events matching a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := query.NewLogEventMatcher(args[1])
			if err != nil {
				return err
			}
			lines, err := readLog(cmd, args[0])
			if err != nil {
				return err
			}
			exec, err := opts.build(lines)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			found := 0
			for _, e := range exec.Events {
				ok, err := m.Match(e)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				found++
				fmt.Fprintf(out, "%s %s %s\n", styles.Muted.Render(fmt.Sprintf("%5d", e.Line)), hostStyle(e.Host).Render(e.Host), e.Text)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), styles.Muted.Render(fmt.Sprintf("%d matching events", found)))
			return nil
		},
	}
}

func newMotifsCmd(opts *options) *cobra.Command {
	var (
		finderOpts usecase.FinderOptions
		q          string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "motifs <log>",
		Short: "List the motifs of a log from the top of the graph down",
		Long: `motifs runs a motif finder over the log and prints the motifs ordered by
how early they occur. Use --query for text motifs or --finder for
structural ones (request-response, broadcast, gather).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := usecase.ViewRequest{Query: q}
			if finderOpts.Type != "" {
				req.Finder = &finderOpts
			}
			if err := req.Validate(); err != nil {
				return err
			}
			finder, err := req.MotifFinder()
			if err != nil {
				return err
			}
			if finder == nil {
				return fmt.Errorf("one of --query or --finder is required")
			}

			lines, err := readLog(cmd, args[0])
			if err != nil {
				return err
			}
			exec, err := opts.build(lines)
			if err != nil {
				return err
			}
			g := exec.Graph
			group, err := finder.Find(g)
			if err != nil {
				return err
			}
			nav, err := motif.NewNavigator(g, group)
			if err != nil {
				return err
			}
			nav.SetWrap(false)

			out := cmd.OutOrStdout()
			n := nav.Len()
			if limit > 0 && limit < n {
				n = limit
			}
			for i := 0; i < n; i++ {
				m, ok := nav.Next()
				if !ok {
					break
				}
				fmt.Fprintln(out, styles.Motif.Render(fmt.Sprintf("motif %d/%d", i+1, nav.Len())))
				for _, id := range m.Nodes() {
					fmt.Fprintf(out, "  %s\n", describeNode(g, id))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "text query")
	cmd.Flags().StringVar(&finderOpts.Type, "finder", "", "structural finder: request-response, broadcast or gather")
	cmd.Flags().IntVar(&finderOpts.MaxLERequester, "max-requester-events", 1, "request-response: local events allowed on the requester")
	cmd.Flags().IntVar(&finderOpts.MaxLEResponder, "max-responder-events", 1, "request-response: local events allowed on the responder")
	cmd.Flags().IntVar(&finderOpts.MinBroadcastGather, "min-hosts", 2, "broadcast/gather: minimum hosts reached")
	cmd.Flags().IntVar(&finderOpts.MaxInBetween, "max-in-between", 1, "broadcast/gather: local events allowed between messages")
	cmd.Flags().IntVar(&limit, "limit", 0, "print at most this many motifs")
	return cmd
}

func newClusterCmd(opts *options) *cobra.Command {
	var metric string
	cmd := &cobra.Command{
		Use:   "cluster <log>",
		Short: "Group the executions of a log by a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLog(cmd, args[0])
			if err != nil {
				return err
			}
			p, err := opts.pipeline()
			if err != nil {
				return err
			}
			execs, err := p.BuildExecutions(lines)
			if err != nil {
				return err
			}
			clusters, err := usecase.ClusterExecutions(execs, metric)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range clusters {
				fmt.Fprintln(out, styles.Highlighted.Render(c.Heading))
				for _, label := range c.Labels {
					if label == "" {
						label = styles.Muted.Render("(unlabeled)")
					}
					fmt.Fprintf(out, "  %s\n", label)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", usecase.ClusterByHostCount, "host-count or event-count")
	return cmd
}

func describeNode(g *domain.Graph, id domain.NodeID) string {
	n := g.Node(id)
	e, _ := n.FirstLogEvent()
	return fmt.Sprintf("%s %s", hostStyle(n.Host()).Render(n.Host()), e.Text)
}

// readLog reads path, or standard input when path is "-".
func readLog(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return lines, nil
}
