package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/models"
)

type options struct {
	snapshotPath string
	mode         string
	asOf         string
	start        string
	end          string
	subjects     string
	pretty       bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("attendance-calc: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("attendance-calc", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.snapshotPath, "snapshot", "", "Path to a YAML snapshot (subjects, timetable, attendance, holidays, semester)")
	fs.StringVar(&opts.mode, "mode", "stats", "One of stats, margins, od-hours, sessions, simulate")
	fs.StringVar(&opts.asOf, "as-of", "", "Evaluation date (YYYY-MM-DD), defaults to today")
	fs.StringVar(&opts.start, "start", "", "Range start for sessions and simulate")
	fs.StringVar(&opts.end, "end", "", "Range end for sessions and simulate")
	fs.StringVar(&opts.subjects, "subjects", "", "Comma separated subject ids for sessions and simulate")
	fs.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.snapshotPath == "" {
		return errors.New("-snapshot is required")
	}

	snapshot, err := loadSnapshot(opts.snapshotPath)
	if err != nil {
		return err
	}
	engine, err := attendance.New(*snapshot)
	if err != nil {
		return err
	}

	asOf := attendance.Day(time.Now())
	if opts.asOf != "" {
		if asOf, err = attendance.ParseDate("as-of", opts.asOf); err != nil {
			return err
		}
	}

	result, err := evaluate(engine, opts, asOf)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

func evaluate(engine *attendance.Engine, opts options, asOf time.Time) (interface{}, error) {
	switch opts.mode {
	case "stats":
		return engine.Stats(asOf)
	case "margins":
		return engine.SafeMargins(asOf)
	case "od-hours":
		return engine.ODHours()
	case "sessions":
		start, end, err := parseRange(opts)
		if err != nil {
			return nil, err
		}
		subjects := splitSubjects(opts.subjects)
		var subject models.SubjectID
		if len(subjects) > 0 {
			subject = subjects[0]
		}
		return engine.Sessions(start, end, subject)
	case "simulate":
		start, end, err := parseRange(opts)
		if err != nil {
			return nil, err
		}
		return engine.SimulateLeave(attendance.LeaveRequest{
			Start:      start,
			End:        end,
			SubjectIDs: splitSubjects(opts.subjects),
		}, asOf)
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func loadSnapshot(path string) (*models.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot models.Snapshot
	if err := yaml.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &snapshot, nil
}

func parseRange(opts options) (time.Time, time.Time, error) {
	start, err := attendance.ParseDate("start", opts.start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := attendance.ParseDate("end", opts.end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func splitSubjects(raw string) []models.SubjectID {
	if raw == "" {
		return nil
	}
	var ids []models.SubjectID
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, models.SubjectID(trimmed))
		}
	}
	return ids
}
