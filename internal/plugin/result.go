package plugin

import (
	"strconv"
	"strings"

	"github.com/atc0005/go-nagios"
)

// PerfDatum is one performance data point, rendered after the '|' separator
// as label=value[uom];warn;crit;min;max with empty trailing fields trimmed.
type PerfDatum struct {
	Label string
	Value float64
	UOM   string
	Warn  string
	Crit  string
	Min   string
	Max   string
}

func (d PerfDatum) String() string {
	var b strings.Builder
	b.WriteString(d.Label)
	b.WriteByte('=')
	b.WriteString(strconv.FormatFloat(d.Value, 'f', -1, 64))
	b.WriteString(d.UOM)

	fields := []string{d.Warn, d.Crit, d.Min, d.Max}
	last := -1
	for i, f := range fields {
		if f != "" {
			last = i
		}
	}
	for i := 0; i <= last; i++ {
		b.WriteByte(';')
		b.WriteString(fields[i])
	}
	return b.String()
}

// Result is the outcome of a single check run.
type Result struct {
	Status  Status
	Message string
	Perf    []PerfDatum
}

// Render returns the full human-readable output line, including performance
// data when present.
func (r Result) Render() string {
	var b strings.Builder
	b.WriteString(r.Status.String())
	b.WriteString(" - ")
	b.WriteString(r.Message)
	for i, d := range r.Perf {
		if i == 0 {
			b.WriteString(" | ")
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// ApplyTo copies the result onto a go-nagios plugin, which owns process exit
// and perfdata formatting.
func (r Result) ApplyTo(p *nagios.Plugin) {
	p.ServiceOutput = r.Status.String() + " - " + r.Message
	p.ExitStatusCode = exitStatusCode(r.Status)

	if len(r.Perf) == 0 {
		return
	}
	pd := make([]nagios.PerformanceData, 0, len(r.Perf))
	for _, d := range r.Perf {
		pd = append(pd, nagios.PerformanceData{
			Label:             d.Label,
			Value:             strconv.FormatFloat(d.Value, 'f', -1, 64),
			UnitOfMeasurement: d.UOM,
			Warn:              d.Warn,
			Crit:              d.Crit,
			Min:               d.Min,
			Max:               d.Max,
		})
	}
	// Values are produced internally, so validation has nothing to reject.
	_ = p.AddPerfData(true, pd...)
}

func exitStatusCode(s Status) int {
	switch s {
	case StatusOK:
		return nagios.StateOKExitCode
	case StatusWarning:
		return nagios.StateWARNINGExitCode
	case StatusCritical:
		return nagios.StateCRITICALExitCode
	default:
		return nagios.StateUNKNOWNExitCode
	}
}
