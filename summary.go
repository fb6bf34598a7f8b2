package main

import (
	"fmt"
	"io"
	"time"

	"blkbrew/brew"
	"blkbrew/config"
	"blkbrew/device"
	"blkbrew/stamp"
)

var outcomeLabels = [stamp.NumOutcomes]string{
	stamp.Good:                  "Good",
	stamp.Changed:               "Changed",
	stamp.BadMatching:           "BAD matching",
	stamp.Overwritten:           "Overwritten",
	stamp.OverwrittenAndChanged: "Overwritten and changed",
	stamp.Bad:                   "BAD",
}

func printSummary(w io.Writer, res *brew.Result, st device.PerfStats, blockOrder int) {
	fmt.Fprintf(w, "Summary for blocks 0x%x to 0x%x (%d blocks of %d bytes):\n",
		res.Range.First, res.Range.Last, res.Range.Len(), 1<<blockOrder)

	if n := res.Sectors(); n > 0 {
		for _, o := range stamp.Outcomes() {
			c := res.Count(o)
			fmt.Fprintf(w, "  %-24s %12d sectors  %s\n", outcomeLabels[o]+":", c, config.FormatSize(c*stamp.SectorSize))
		}
	}
	if n := res.WriteFailures.Count(); n > 0 {
		fmt.Fprintf(w, "  %-24s %12d blocks\n", "Write failures:", n)
	}
	if n := res.ReadFailures.Count(); n > 0 {
		fmt.Fprintf(w, "  %-24s %12d blocks\n", "Read failures:", n)
	}

	bs := uint64(1) << blockOrder
	if st.WriteCount > 0 {
		fmt.Fprintf(w, "  Write: %d blocks in %s (%s)\n", st.WriteCount, st.WriteTime.Truncate(time.Millisecond), rate(st.WriteCount*bs, st.WriteTime))
	}
	if st.ResetCount > 0 {
		fmt.Fprintf(w, "  Reset: %s\n", st.ResetTime.Truncate(time.Millisecond))
	}
	if st.ReadCount > 0 {
		fmt.Fprintf(w, "  Read:  %d blocks in %s (%s)\n", st.ReadCount, st.ReadTime.Truncate(time.Millisecond), rate(st.ReadCount*bs, st.ReadTime))
	}
}

// rate renders a throughput like the status line does.
func rate(bytes uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return human(int64(float64(bytes)/d.Seconds())) + "/s"
}

func human(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%dM", b/(1024*1024))
	}
	if b >= 1024 {
		return fmt.Sprintf("%dK", b/1024)
	}
	return fmt.Sprintf("%dB", b)
}
