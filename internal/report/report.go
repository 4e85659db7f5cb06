package report

import (
	"sort"
	"time"

	"github.com/texbuddy/texbuddy/internal/problem"
)

// ModuleRun records how one checker fared during the run.
type ModuleRun struct {
	// Module is the checker name.
	Module string `json:"module"`

	// Duration is the checker's wall-clock run time.
	Duration time.Duration `json:"duration"`

	// Error is the failure message, empty when the checker succeeded.
	Error string `json:"error,omitempty"`
}

// Report is the finished outcome of checking one file.
type Report struct {
	// File is the checked file's path.
	File string `json:"file"`

	// Language the document was checked against.
	Language string `json:"language"`

	// GeneratedAt is the report creation time.
	GeneratedAt time.Time `json:"generated_at"`

	// General holds problems concerning the document as a whole.
	General []problem.Problem `json:"general"`

	// Positioned holds located problems in display order.
	Positioned []problem.Problem `json:"positioned"`

	// Runs lists every selected checker with timing and failure state,
	// sorted by module name.
	Runs []ModuleRun `json:"runs"`

	// Whitelisted is the number of findings the whitelist removed.
	Whitelisted int `json:"whitelisted"`

	// Filtered is the number of findings in-file commands removed.
	Filtered int `json:"filtered"`
}

// Build assembles a report from the run's raw outcome.
func Build(file, language string, set *problem.Set, timings map[string]time.Duration, failures map[string]error) *Report {
	general, positioned := set.Partition()

	runs := make([]ModuleRun, 0, len(timings))
	for module, duration := range timings {
		run := ModuleRun{Module: module, Duration: duration}
		if err := failures[module]; err != nil {
			run.Error = err.Error()
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Module < runs[j].Module })

	return &Report{
		File:        file,
		Language:    language,
		GeneratedAt: time.Now(),
		General:     general,
		Positioned:  positioned,
		Runs:        runs,
	}
}

// Total returns the number of reported problems.
func (r *Report) Total() int {
	return len(r.General) + len(r.Positioned)
}

// CountBySeverity tallies all problems per severity.
func (r *Report) CountBySeverity() map[problem.Severity]int {
	counts := make(map[problem.Severity]int)
	for _, p := range r.General {
		counts[p.Severity]++
	}
	for _, p := range r.Positioned {
		counts[p.Severity]++
	}
	return counts
}

// Failed returns the runs that ended in an error, in module order.
func (r *Report) Failed() []ModuleRun {
	var failed []ModuleRun
	for _, run := range r.Runs {
		if run.Error != "" {
			failed = append(failed, run)
		}
	}
	return failed
}
