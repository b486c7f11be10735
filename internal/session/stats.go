package session

import psproc "github.com/shirou/gopsutil/v3/process"

// processStats samples CPU and resident memory for the decoder
// subprocess. Best-effort: zeroes when the process is gone or the
// platform refuses the read.
func processStats(pid int) (cpuPercent float64, rssBytes uint64) {
	if pid <= 0 {
		return 0, 0
	}
	p, err := psproc.NewProcess(int32(pid))
	if err != nil {
		return 0, 0
	}
	if cpu, err := p.CPUPercent(); err == nil {
		cpuPercent = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		rssBytes = mem.RSS
	}
	return cpuPercent, rssBytes
}
