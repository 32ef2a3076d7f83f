package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smo-sim/smo/qnet"
)

// WriteReport renders the textual report: per source — request amount,
// rejection probability, average buffer/device/total time and the two
// variances; per device — the usage coefficient over elapsed simulation
// time.
func WriteReport(w io.Writer, sim *qnet.Simulator) {
	fmt.Fprintf(w, "Total simulation time: %v\n", sim.Clock())

	fmt.Fprintln(w, "Sources:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "i\tRequest amount\tRejection probability\tTime full\tTime buffer\tTime processing\tVariance buffer\tVariance processing")
	for i := 0; i < sim.SourceCount(); i++ {
		s := sim.SourceStats(i)
		bufferTime := s.AverageBufferTime()
		deviceTime := s.AverageDeviceTime()
		fmt.Fprintf(tw, "%d\t%d\t%v\t%v\t%v\t%v\t%v\t%v\n",
			i, s.Generated, s.RejectionProbability(),
			bufferTime+deviceTime, bufferTime, deviceTime,
			s.BufferTimeVariance(), s.DeviceTimeVariance(),
		)
	}
	tw.Flush()

	fmt.Fprintln(w, "Devices:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "i\tUsage coefficient")
	for i := 0; i < sim.DeviceCount(); i++ {
		d := sim.DeviceStats(i)
		fmt.Fprintf(tw, "%d\t%v\n", i, d.Utilization(sim.Clock()))
	}
	tw.Flush()
}
