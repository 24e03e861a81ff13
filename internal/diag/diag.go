// Package diag collects the CI diagnostic report: host information, CI variables,
// tool availability, and a few sample tasks run in the working directory.
package diag

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/BRAVO68WEB/hellodock/internal/config"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTools are looked up on PATH when no tool list is given.
var DefaultTools = []string{"go", "git", "docker"}

// Report is the result of one diagnostic run.
type Report struct {
	RunID      string     `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	System     System     `json:"system" yaml:"system"`
	Clock      Clock      `json:"clock" yaml:"clock"`
	JobVars    []Variable `json:"job_variables" yaml:"job_variables"`
	SystemVars []Variable `json:"system_variables" yaml:"system_variables"`
	Tools      []Tool     `json:"tools" yaml:"tools"`
	Tasks      Tasks      `json:"tasks" yaml:"tasks"`
	FinishedAt time.Time  `json:"finished_at" yaml:"finished_at"`
}

type System struct {
	Platform  string `json:"platform" yaml:"platform"`
	Release   string `json:"release" yaml:"release"`
	Arch      string `json:"arch" yaml:"arch"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	WorkDir   string `json:"work_dir" yaml:"work_dir"`
	User      string `json:"user" yaml:"user"`
	Hostname  string `json:"hostname" yaml:"hostname"`
}

type Clock struct {
	Date string `json:"date" yaml:"date"`
	Time string `json:"time" yaml:"time"`
	Zone string `json:"zone" yaml:"zone"`
}

type Variable struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Tool is the PATH lookup result for one executable. A missing tool is not an error.
type Tool struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Found bool   `json:"found" yaml:"found"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Collector gathers a Report. The zero value is not usable; use NewCollector.
type Collector struct {
	lookupEnv config.LookupFunc
	lookPath  func(file string) (string, error)
	now       func() time.Time
	dir       string
	tools     []string
	hostname  func() (string, error)
}

// Option configures a Collector.
type Option func(*Collector)

// WithEnv replaces os.LookupEnv.
func WithEnv(lookup config.LookupFunc) Option {
	return func(c *Collector) { c.lookupEnv = lookup }
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Collector) { c.lookPath = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithDir sets the working directory for tasks. Defaults to the process working directory.
func WithDir(dir string) Option {
	return func(c *Collector) { c.dir = dir }
}

// WithTools sets the executables to look up.
func WithTools(tools ...string) Option {
	return func(c *Collector) { c.tools = tools }
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		lookupEnv: os.LookupEnv,
		lookPath:  exec.LookPath,
		now:       time.Now,
		tools:     DefaultTools,
		hostname:  os.Hostname,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect gathers the report and runs the sample tasks. Any task error aborts the run.
func (c *Collector) Collect(ctx context.Context) (*Report, error) {
	dir := c.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}

	started := c.now()
	r := &Report{
		RunID:     uuid.NewString(),
		StartedAt: started,
		Clock: Clock{
			Date: started.Format("2006-01-02"),
			Time: started.Format("15:04:05"),
			Zone: zoneName(started),
		},
	}
	r.System = c.system(dir)
	r.JobVars = c.variables(config.JobVariables)
	r.SystemVars = c.variables(config.SystemVariables)

	tools, err := c.lookupTools(ctx)
	if err != nil {
		return nil, err
	}
	r.Tools = tools

	tasks, err := runTasks(dir, r.RunID, c.now)
	if err != nil {
		return nil, err
	}
	r.Tasks = tasks
	r.FinishedAt = c.now()
	return r, nil
}

func (c *Collector) system(dir string) System {
	host, err := c.hostname()
	if err != nil {
		host = "unknown"
	}
	user := config.Getenv(c.lookupEnv, "USER")
	if user == config.NotSet {
		user = "Unknown"
	}
	return System{
		Platform:  runtime.GOOS,
		Release:   kernelRelease(),
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
		WorkDir:   dir,
		User:      user,
		Hostname:  host,
	}
}

func (c *Collector) variables(names []string) []Variable {
	out := make([]Variable, 0, len(names))
	for _, name := range names {
		out = append(out, Variable{
			Name:  name,
			Value: TruncateValue(name, config.Getenv(c.lookupEnv, name)),
		})
	}
	return out
}

func (c *Collector) lookupTools(ctx context.Context) ([]Tool, error) {
	out := make([]Tool, len(c.tools))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range c.tools {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := Tool{Name: name}
			path, err := c.lookPath(name)
			if err != nil {
				t.Error = err.Error()
			} else {
				t.Path = path
				t.Found = true
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("check tools: %w", err)
	}
	return out, nil
}

// maxPathLen is the longest PATH value reported before truncation.
const maxPathLen = 100

// TruncateValue shortens long PATH values to maxPathLen characters followed by "...".
func TruncateValue(name, value string) string {
	if name != "PATH" || len(value) <= maxPathLen {
		return value
	}
	return value[:maxPathLen] + "..."
}

func zoneName(t time.Time) string {
	name, _ := t.Zone()
	return name
}
