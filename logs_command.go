package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/khanghh/phishsoc/internal/eventlog"
	"github.com/khanghh/phishsoc/params"
	"github.com/urfave/cli/v2"
)

var (
	logsDirFlag = &cli.StringFlag{
		Name:  "dir",
		Usage: "Directory holding the log streams",
		Value: params.LogDir,
	}
	linesFlag = &cli.IntFlag{
		Name:  "lines",
		Usage: "Number of lines to print",
		Value: params.LogReadDefaultLines,
	}
)

var logsCommand = &cli.Command{
	Name:  "logs",
	Usage: "Inspect the activity log streams",
	Flags: []cli.Flag{logsDirFlag},
	Subcommands: []*cli.Command{
		{
			Name:   "summary",
			Usage:  "Print size and line count of every stream",
			Action: logsSummary,
		},
		{
			Name:      "tail",
			Usage:     "Print the last lines of a stream",
			ArgsUsage: "<stream>",
			Flags:     []cli.Flag{linesFlag},
			Action:    logsTail,
		},
	},
}

// openLogStore opens an existing log directory. NewStore would create a
// missing one, hiding a mistyped --dir behind empty streams.
func openLogStore(dir string) (*eventlog.Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("log directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("log directory %s is not a directory", dir)
	}
	return eventlog.NewStore(dir), nil
}

func logsSummary(ctx *cli.Context) error {
	logStore, err := openLogStore(ctx.String(logsDirFlag.Name))
	if err != nil {
		return err
	}
	summaries := logStore.Summarize()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STREAM\tFILE\tSIZE\tLINES\tDESCRIPTION")
	for _, stream := range eventlog.Streams {
		s := summaries[stream]
		if s.Error != "" {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t%s\n", stream, s.File, s.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", stream, s.File, s.SizeReadable, s.Lines, s.Description)
	}
	return w.Flush()
}

func logsTail(ctx *cli.Context) error {
	stream := ctx.Args().First()
	if stream == "" {
		return fmt.Errorf("missing stream name, one of %v", eventlog.Streams)
	}
	logStore, err := openLogStore(ctx.String(logsDirFlag.Name))
	if err != nil {
		return err
	}
	lines, err := logStore.Read(stream, ctx.Int(linesFlag.Name))
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
