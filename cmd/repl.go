package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smo-sim/smo/qnet"
)

// RunInteractive implements the single-character REPL: an empty line
// steps the simulator once, "q" quits, "s"/"d" print the source/device
// next-event calendars, "b" prints the real per-source buffer, "p"
// prints the flat FakeBuffer view, and "h" reprints the help text.
func RunInteractive(in io.Reader, out io.Writer, sim *qnet.Simulator) {
	printHelp(out)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			ev := sim.Step()
			fmt.Fprintf(out, "Time: %v %s\n", sim.Clock(), describeEvent(ev))
		case "q":
			return
		case "s":
			printSourceCalendar(out, sim)
		case "d":
			printDeviceCalendar(out, sim)
		case "b":
			printRealBuffer(out, sim)
		case "p":
			printFakeBuffer(out, sim)
		case "h":
			printHelp(out)
		default:
			fmt.Fprintf(out, "unrecognized command %q; \"h\" for help\n", line)
		}
		if sim.IsCompleted() {
			fmt.Fprintln(out, "Simulation complete.")
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Interactive mode commands:")
	fmt.Fprintln(out, "\"\" - Simulation step")
	fmt.Fprintln(out, "\"q\" - Quit")
	fmt.Fprintln(out, "\"s\" - Print source calendar")
	fmt.Fprintln(out, "\"d\" - Print device calendar")
	fmt.Fprintln(out, "\"b\" - Print buffer")
	fmt.Fprintln(out, "\"p\" - Print packets in buffer")
	fmt.Fprintln(out, "\"h\" - Print help")
}

func describeEvent(ev qnet.Event) string {
	switch ev.Kind() {
	case qnet.EventGenerateNewRequest:
		return fmt.Sprintf("Source %d made new request", ev.ID())
	case qnet.EventDeviceRelease:
		return fmt.Sprintf("Device %d is released", ev.ID())
	default:
		return "Simulation ended"
	}
}

func printSourceCalendar(out io.Writer, sim *qnet.Simulator) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "i\tNext event\tSign")
	for i := 0; i < sim.SourceCount(); i++ {
		s := sim.SourceStats(i)
		fmt.Fprintf(tw, "%d\t%v\t%d\n", i, s.NextRequest, neverSign(s.NextRequest))
	}
	tw.Flush()
}

func printDeviceCalendar(out io.Writer, sim *qnet.Simulator) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "i\tNext event\tSign\tRequest")
	for i := 0; i < sim.DeviceCount(); i++ {
		d := sim.DeviceStats(i)
		fmt.Fprintf(tw, "%d\t%v\t%d\t%s\n", i, d.NextRequest, neverSign(d.NextRequest), formatRequest(d.CurrentRequest))
	}
	tw.Flush()
}

func printRealBuffer(out io.Writer, sim *qnet.Simulator) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i := 0; i < sim.SourceCount(); i++ {
		sub := sim.SubQueue(i)
		fmt.Fprintf(tw, "Packet %d:", i)
		for _, req := range sub {
			fmt.Fprintf(tw, "\t%s", formatRequest(&req))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func printFakeBuffer(out io.Writer, sim *qnet.Simulator) {
	flat := sim.FakeBuffer()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "i:")
	for i := range flat {
		fmt.Fprintf(tw, "\t%d", i)
	}
	fmt.Fprintln(tw)
	fmt.Fprint(tw, "Values:")
	for _, req := range flat {
		r := req
		fmt.Fprintf(tw, "\t%s", formatRequest(&r))
	}
	fmt.Fprintln(tw)
	tw.Flush()
}

func neverSign(t qnet.Time) int {
	if t.IsNever() {
		return 1
	}
	return 0
}

func formatRequest(req *qnet.Request) string {
	if req == nil {
		return "None"
	}
	return fmt.Sprintf("%d.%d", req.SourceID, req.Serial)
}
