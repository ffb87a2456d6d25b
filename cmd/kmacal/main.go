package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"kmacal/internal/apperr"
	"kmacal/internal/config"
	"kmacal/internal/convert"
	appLog "kmacal/internal/log"
)

const version = "0.1.0"

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		reportFailure(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "kmacal",
		Usage:   "Convert the KMA registration timetable (HTML) into an iCalendar file.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file; created with defaults if missing",
				EnvVars: []string{"KMACAL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
			},
			// "kmacal -i page.html -o out.ics" is shorthand for "kmacal convert".
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input HTML file containing the KMA schedule"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output ICS file for the generated calendar"},
		},
		Before: func(c *cli.Context) error {
			appLog.SetLevel(appLog.ParseLevel(c.String("log-level")))
			return nil
		},
		Action: func(c *cli.Context) error {
			if !c.IsSet("input") && !c.IsSet("output") {
				return cli.ShowAppHelp(c)
			}
			return runConvert(c)
		},
		Commands: []*cli.Command{
			convertCommand(),
			inspectCommand(),
			configCommand(),
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Parse a saved timetable page and write an .ics file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "input HTML file containing the KMA schedule"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "output ICS file for the generated calendar"},
		},
		Action: runConvert,
	}
}

func runConvert(c *cli.Context) error {
	in, out := c.String("input"), c.String("output")
	if in == "" || out == "" {
		return errors.New("both --input and --output are required")
	}

	resolved, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	conv, err := convert.New(resolved)
	if err != nil {
		return err
	}

	res, err := conv.Convert(in, out)
	if err != nil {
		return err
	}

	appLog.Info("conversion completed", "courses", len(res.Courses), "events", len(res.Events))
	fmt.Fprintf(c.App.Writer, "Schedule converted from %q to %q (%d courses, %d events).\n",
		in, out, len(res.Courses), len(res.Events))
	fmt.Fprintln(c.App.Writer, "Import this file into Google Calendar or any other calendar application.")
	return nil
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a generated .ics file per course.",
		ArgsUsage: "<file.ics>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("inspect takes exactly one .ics file", 2)
			}
			header, courses, err := convert.Inspect(c.Args().First())
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s (%s)\n", header.Name, header.Timezone)
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tCOURSE\tEVENTS\tFIRST\tLAST")
			for _, s := range courses {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Code, s.Summary, s.Events,
					s.First.Format("2006-01-02 15:04"), s.Last.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file.",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write the default configuration.",
				ArgsUsage: "[path]",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						path = c.String("config")
					}
					if path == "" {
						path = "kmacal.yaml"
					}
					if _, err := os.Stat(path); err == nil {
						return cli.Exit(fmt.Sprintf("%s already exists", path), 1)
					}
					if err := config.Save(path, config.DefaultConfig()); err != nil {
						return fmt.Errorf("write config: %w", err)
					}
					appLog.Info("default config written", "path", path)
					return nil
				},
			},
		},
	}
}

func loadConfig(path string) (*config.Resolved, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	appLog.Debug("effective config",
		"config_path", path,
		"timezone", cfg.Timezone,
		"table_id", cfg.TableID,
		"unknown_weekday", cfg.UnknownWeekday,
		"periods", len(cfg.Periods),
	)
	return resolved, nil
}

// reportFailure prints input and pipeline failures as one readable line;
// their message already carries the wrapped causes.
func reportFailure(w io.Writer, err error) {
	var inErr *convert.InputError
	if errors.As(err, &inErr) || apperr.CodeOf(err) != "" {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	appLog.Error("kmacal failed", err)
}
