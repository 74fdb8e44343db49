package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/edvin/machines/internal/machinectl"
)

func main() {
	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] + " " + os.Args[2] {
	case "definitions apply":
		fs := flag.NewFlagSet("definitions apply", flag.ExitOnError)
		file := fs.String("f", "", "Path to definitions YAML file (required)")
		fs.Parse(os.Args[3:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}

		defs, err := machinectl.LoadDefinitions(*file)
		if err != nil {
			fail(err)
		}
		res, err := machinectl.ApplyDefinitions(ctx, machinectl.NewClient(defs.APIURL, defs.APIKey), defs)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Applied %d definitions (%d created, %d updated).\n", res.Created+res.Updated, res.Created, res.Updated)

	case "definitions delete":
		fs, apiURL, apiKey := apiFlags("definitions delete")
		fs.Parse(os.Args[3:])

		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: machinectl definitions delete [-api URL] <challenge-id>")
			os.Exit(1)
		}
		challengeID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			fail(fmt.Errorf("invalid challenge id %q", fs.Arg(0)))
		}
		if err := machinectl.DeleteDefinition(ctx, machinectl.NewClient(*apiURL, *apiKey), challengeID); err != nil {
			fail(err)
		}

	case "machines list":
		fs, apiURL, apiKey := apiFlags("machines list")
		var f machinectl.ListFilter
		fs.Int64Var(&f.UserID, "user", 0, "Only machines of this user")
		fs.Int64Var(&f.ChallengeID, "challenge", 0, "Only machines of this challenge")
		fs.StringVar(&f.Status, "status", "", "running, stopped or stopped_pending_cleanup")
		fs.IntVar(&f.Limit, "limit", 0, "Page size")
		fs.Parse(os.Args[3:])

		if _, err := machinectl.ListMachines(ctx, machinectl.NewClient(*apiURL, *apiKey), f, os.Stdout); err != nil {
			fail(err)
		}

	case "machines terminate":
		fs, apiURL, apiKey := apiFlags("machines terminate")
		fs.Parse(os.Args[3:])

		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: machinectl machines terminate [-api URL] <machine-id>...")
			os.Exit(1)
		}
		res, err := machinectl.TerminateMachines(ctx, machinectl.NewClient(*apiURL, *apiKey), fs.Args())
		if err != nil {
			fail(err)
		}
		fmt.Printf("Terminated %d machines.\n", len(res.Terminated))
		if !res.Success {
			if res.Failed != nil {
				fmt.Fprintf(os.Stderr, "Failed on %s: %s\n", res.Failed.MachineID, res.Failed.Error)
			}
			if len(res.NotProcessed) > 0 {
				fmt.Fprintf(os.Stderr, "Not processed: %v\n", res.NotProcessed)
			}
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s %s\n", os.Args[1], os.Args[2])
		printUsage()
		os.Exit(1)
	}
}

func apiFlags(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	apiURL := fs.String("api", "http://localhost:8090", "Machines API base URL")
	apiKey := fs.String("key", os.Getenv("MACHINES_API_KEY"), "Admin API key (default $MACHINES_API_KEY)")
	return fs, apiURL, apiKey
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  machinectl definitions apply -f <definitions.yaml>
  machinectl definitions delete [-api URL] <challenge-id>
  machinectl machines list [-api URL] [-challenge N] [-user N] [-status S]
  machinectl machines terminate [-api URL] <machine-id>...

Commands:
  definitions apply     Create or update machine definitions from a YAML file
  definitions delete    Delete a definition and stop every machine of the challenge
  machines list         List machine records
  machines terminate    Stop machines by ID

Flags:
  -f string    Path to YAML definitions file
  -api string  Machines API base URL (default: http://localhost:8090)
  -key string  Admin API key (default: $MACHINES_API_KEY)`)
}
